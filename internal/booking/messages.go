package booking

// User-facing validation messages. The dialogue and the REST surface both
// relay these verbatim.
const (
	MsgInvalidClientID = "Cliente inválido."
	MsgInvalidName     = "Nome inválido. Informe um nome com pelo menos 3 letras."
	MsgInvalidService  = "Serviço inválido. Os serviços disponíveis são: Corte, Barba e Corte + Barba."
	MsgInvalidDateTime = "Data e horário inválidos. Escolha um horário futuro."
	MsgInvalidTime     = "Esse horário não está disponível. Por favor, escolha outro horário."
)
