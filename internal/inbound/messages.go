package inbound

import (
	"fmt"
	"strings"

	"corralon_backend/internal/conversation"
)

const (
	msgThrottled          = "Estoy procesando tus mensajes, dame un momento 🙏"
	msgTranscribing       = "Escuchando tu audio… 🎧"
	msgReadingImage       = "Leyendo la foto de tu lista… 📷"
	msgAudioFailed        = "No pude entender el audio 😕. ¿Me lo podés escribir?"
	msgImageFailed        = "No pude leer la foto 😕. Probá con una imagen más nítida o escribime la lista."
	msgCatalogUnavailable = "Tuve un problema consultando el catálogo. Probá de nuevo en unos minutos 🙏"
	msgTemporaryFailure   = "Tuve un problema procesando tu mensaje. Probá de nuevo en unos minutos 🙏"
	msgQuoteFailed        = "No pude generar el PDF del presupuesto 😕. Escribí CONFIRMAR para intentar de nuevo."
)

func quoteCaption(number string) string {
	return fmt.Sprintf("Presupuesto %s", number)
}

func quoteLinkMessage(number, url string) string {
	return fmt.Sprintf("Tu presupuesto %s está listo. Descargalo acá: %s", number, url)
}

func buttonsFallback(buttons []conversation.Button) string {
	var b strings.Builder
	for _, btn := range buttons {
		cmd, ok := buttonCommands[btn.ID]
		if !ok {
			cmd = btn.ID
		}
		fmt.Fprintf(&b, "\n• %s: escribí %s", btn.Title, cmd)
	}
	return b.String()
}

func rowsFallback(rows []conversation.Row) string {
	var b strings.Builder
	for i, row := range rows {
		fmt.Fprintf(&b, "\n%d. %s", i+1, row.Title)
		if row.Description != "" {
			fmt.Fprintf(&b, " (%s)", row.Description)
		}
	}
	return b.String()
}
