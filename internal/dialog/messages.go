package dialog

// User-facing texts for the WhatsApp conversation. Every reply the state
// machine produces comes from here or from the formatting helpers; raw error
// text never reaches the user.
const (
	MsgWelcome = "Opa! Bem-vindo à Barbearia. Realizamos agendamentos de segunda a sábado. " +
		"Qual serviço deseja? Corte, Barba ou Corte + Barba.\n(Envie 'Cancelar' para sair)"
	MsgServiceNotUnderstood = "Não entendi qual serviço você deseja. Escolha entre Corte, Barba ou Corte + Barba."
	MsgChooseServiceFirst   = "Escolha um serviço antes (Corte, Barba ou Corte + Barba). Qual prefere?"
	MsgNoSlots              = "Não temos horários disponíveis no momento. Tente novamente mais tarde!"
	MsgSundayNotAllowed     = "Não realizamos agendamentos aos domingos. Trabalhamos apenas de segunda a sábado."
	MsgNoBookingInProgress  = "Nenhum agendamento em andamento ou etapa incorreta. Quer agendar um serviço?"
	MsgNotAwaitingName      = "Não estou esperando um nome agora. Por favor, comece o agendamento novamente."
	MsgInvalidName          = "Por favor, me diga um nome válido (com pelo menos 2 caracteres)."
	MsgErrorRenaming        = "Não consegui atualizar seu nome. Por favor, tente novamente."
	MsgErrorBooking         = "Ops, algo deu errado ao agendar. Tente novamente."
	MsgSlotTaken            = "Esse horário acabou de ficar indisponível. Por favor, escolha outro horário."
	MsgErrorReschedule      = "Ops, algo deu errado ao reagendar. Tente novamente."
	MsgNothingToReschedule  = "Você não tem agendamentos ativos para reagendar."
	MsgNoRescheduleRunning  = "Nenhum reagendamento em andamento. Quer reagendar um agendamento?"
	MsgRescheduleAborted    = "Reagendamento cancelado. Deseja escolher outro horário?"
	MsgRescheduleFlowActive = "Estamos no fluxo de reagendamento. Escolha uma das opções apresentadas ou envie 'Cancelar' para sair."
	MsgClientNotFound       = "Não encontramos seu cadastro. Por favor realize um agendamento primeiro."
	MsgNothingToCancel      = "Você não tem agendamentos ativos para cancelar."
	MsgNoCancelRunning      = "Nenhum cancelamento em andamento. Quer cancelar um agendamento?"
	MsgCancelFlowActive     = "Estamos no fluxo de cancelamento. Escolha uma das opções apresentadas ou envie 'Cancelar' para sair."
	MsgCancelNotConfirmed   = "Cancelamento não confirmado. Deseja fazer algo mais?"
	MsgBookingNotConfirmed  = "Agendamento não confirmado. Deseja tentar novamente?"
	MsgErrorCancelling      = "Ops, algo deu errado ao processar o cancelamento. Tente novamente mais tarde."
	MsgDidNotUnderstand     = "Desculpe, não entendi. Pode repetir, por favor?"
	MsgGeneralError         = "Ops, algo deu errado. Tente novamente mais tarde."
)

// serviceNotRecognized names the rejected service back to the user.
func serviceNotRecognized(name string) string {
	return "Desculpe, o serviço \"" + name + "\" não foi reconhecido. Escolha entre Corte, Barba ou Corte + Barba."
}
