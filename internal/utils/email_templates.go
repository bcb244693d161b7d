package utils

import (
	"html/template"

	"djbooks_back_end/internal/models"
)

type orderEmailLine struct {
	Title    string
	Quantity int
	Price    string
	Total    string
}

type orderEmail struct {
	RefCode string
	Lines   []orderEmailLine
	Total   string
}

func newOrderEmail(o models.Order) orderEmail {
	e := orderEmail{RefCode: o.RefCode, Total: models.FormatPrice(o.Total())}
	for _, line := range o.Items {
		e.Lines = append(e.Lines, orderEmailLine{
			Title:    line.Book.Title,
			Quantity: line.Quantity,
			Price:    models.FormatPrice(line.Book.EffectivePrice()),
			Total:    models.FormatPrice(line.LineTotal()),
		})
	}
	return e
}

var orderConfirmationTmpl = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>Confirmación de pedido</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Gracias por tu compra</h2>
		<p>Tu pedido <strong>{{.RefCode}}</strong> fue pagado con éxito.</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Libro</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Cantidad</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Precio</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
			{{- range .Lines}}
				<tr>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.Title}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">{{.Quantity}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">${{.Price}}</td>
					<td style="padding: 10px; border: 1px solid #ddd;">${{.Total}}</td>
				</tr>
			{{- end}}
			</tbody>
		</table>
		<p style="font-size: 18px;"><strong>Total: ${{.Total}}</strong></p>
	</div>
</body>
</html>`))

var bookRequestTmpl = template.Must(template.New("book_request").Parse(`<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>Solicitud de libro</title></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
	<h2>Solicitud de libro</h2>
	<p><strong>Título:</strong> {{.Title}}</p>
	{{- if .Author}}<p><strong>Autor:</strong> {{.Author}}</p>{{end}}
	<p><strong>Nombre:</strong> {{.Name}}</p>
	<p><strong>Correo:</strong> {{.Email}}</p>
	{{- if .Phone}}<p><strong>Teléfono:</strong> {{.Phone}}</p>{{end}}
	{{- if .Message}}<p>{{.Message}}</p>{{end}}
</body>
</html>`))
