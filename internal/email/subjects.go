package email

const (
	subjectQuoteFinalizedFmt = "Nuevo presupuesto %s (%s)"
	subjectHandoffFmt        = "Cliente pide un asesor: %s"
)
