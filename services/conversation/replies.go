// File: services/conversation/replies.go
package conversation

import "fmt"

// Reply templates per detected language. State transitions never depend on
// this text; it is presentation only.
var replyTable = map[string]map[string]string{
	"en": {
		"greeting":          "Hi! I can help you book an appointment. Want to see the available times?",
		"availability":      "Here are the next available times for %s:\n%s\nReply with the number or the time you want.",
		"no_availability":   "I couldn't find any open times in the next few days. Please try again later.",
		"prices":            "Our services:\n%s",
		"price_line":        "- %s (%d min): %.2f",
		"extras":            "Available extras:\n%s",
		"no_extras":         "There are no extras for this service.",
		"extra_line":        "- %s: %.2f",
		"duration_set":      "Noted, %d minutes. %s",
		"which_duration":    "How long a session would you like, in minutes?",
		"service_set":       "Great choice: %s (%.2f). %s",
		"service_unknown":   "I didn't find that service. %s",
		"booked":            "All set! Your appointment is confirmed for %s at %s. The area is %s; I'll send the exact address closer to the time.",
		"slot_taken":        "Sorry, that time was just taken. Currently free:\n%s",
		"past_time":         "That time has already passed. Could you pick a different one?",
		"which_time":        "Which time would you like? Ask me for the available times if you need the list.",
		"have_booking":      "You already have an appointment on %s at %s. I can only book a new one after this one is done or cancelled.",
		"booking_time":      "Your appointment is on %s at %s.",
		"address_approx":    "We're in the %s area. I'll share the exact address closer to your appointment.",
		"address_exact":     "Here's the address: %s. See you soon!",
		"no_booking":        "You don't have an active appointment right now. Want to book one?",
		"cancel_ask":        "Do you want to cancel your appointment on %s at %s?",
		"cancelled":         "Your appointment has been cancelled. Feel free to book again anytime.",
		"cancel_nothing":    "There's no appointment to cancel. Want to book one?",
		"arrival_ack":       "Great, see you in a moment!",
		"reassurance":       "You're all set for %s at %s. Anything else?",
		"media":             "You can find photos of our work on our profile.",
		"off_topic_1":       "I'm here to help with appointments. Want to see the available times?",
		"off_topic_2":       "Let's keep this about your booking. Should I show you the available times?",
		"away_notice":       "We're currently away and will reply as soon as possible.",
		"no_show_warning":   "We missed you at your last appointment. Please cancel in advance next time.",
		"no_show_terminal":  "Due to repeated missed appointments, this number can no longer book with us.",
		"retry":             "Sorry, something went wrong on my side. Could you send that again?",
	},
	"pt": {
		"greeting":          "Oi! Posso te ajudar a agendar um horário. Quer ver os horários disponíveis?",
		"availability":      "Esses são os próximos horários livres para %s:\n%s\nResponda com o número ou o horário que preferir.",
		"no_availability":   "Não encontrei horários livres nos próximos dias. Tente novamente mais tarde.",
		"prices":            "Nossos serviços:\n%s",
		"price_line":        "- %s (%d min): %.2f",
		"extras":            "Adicionais disponíveis:\n%s",
		"no_extras":         "Não há adicionais para esse serviço.",
		"extra_line":        "- %s: %.2f",
		"duration_set":      "Anotado, %d minutos. %s",
		"which_duration":    "Quantos minutos de sessão você gostaria?",
		"service_set":       "Ótima escolha: %s (%.2f). %s",
		"service_unknown":   "Não encontrei esse serviço. %s",
		"booked":            "Pronto! Seu horário está confirmado para %s às %s. A região é %s; envio o endereço exato mais perto do horário.",
		"slot_taken":        "Poxa, esse horário acabou de ser ocupado. Livres agora:\n%s",
		"past_time":         "Esse horário já passou. Pode escolher outro?",
		"which_time":        "Qual horário você prefere? Me peça os horários disponíveis se quiser a lista.",
		"have_booking":      "Você já tem um horário em %s às %s. Só consigo marcar outro depois que esse for concluído ou cancelado.",
		"booking_time":      "Seu horário é em %s às %s.",
		"address_approx":    "Ficamos na região de %s. Envio o endereço exato mais perto do seu horário.",
		"address_exact":     "O endereço é: %s. Até já!",
		"no_booking":        "Você não tem um horário ativo no momento. Quer agendar?",
		"cancel_ask":        "Você quer cancelar seu horário de %s às %s?",
		"cancelled":         "Seu horário foi cancelado. Pode agendar de novo quando quiser.",
		"cancel_nothing":    "Não há horário para cancelar. Quer agendar um?",
		"arrival_ack":       "Combinado, até já!",
		"reassurance":       "Está tudo certo para %s às %s. Precisa de mais alguma coisa?",
		"media":             "Você encontra fotos do nosso trabalho no nosso perfil.",
		"off_topic_1":       "Estou aqui para ajudar com agendamentos. Quer ver os horários disponíveis?",
		"off_topic_2":       "Vamos focar no seu agendamento. Te mostro os horários disponíveis?",
		"away_notice":       "Estamos ausentes no momento e respondemos assim que possível.",
		"no_show_warning":   "Sentimos sua falta no último horário. Da próxima vez, cancele com antecedência, por favor.",
		"no_show_terminal":  "Por faltas repetidas, este número não pode mais agendar conosco.",
		"retry":             "Desculpe, algo deu errado aqui. Pode enviar de novo?",
	},
	"es": {
		"greeting":          "¡Hola! Puedo ayudarte a reservar un turno. ¿Quieres ver los horarios disponibles?",
		"availability":      "Estos son los próximos horarios libres para %s:\n%s\nResponde con el número o el horario que prefieras.",
		"no_availability":   "No encontré horarios libres en los próximos días. Intenta de nuevo más tarde.",
		"prices":            "Nuestros servicios:\n%s",
		"price_line":        "- %s (%d min): %.2f",
		"extras":            "Adicionales disponibles:\n%s",
		"no_extras":         "No hay adicionales para este servicio.",
		"extra_line":        "- %s: %.2f",
		"duration_set":      "Anotado, %d minutos. %s",
		"which_duration":    "¿Cuántos minutos de sesión te gustaría?",
		"service_set":       "Buena elección: %s (%.2f). %s",
		"service_unknown":   "No encontré ese servicio. %s",
		"booked":            "¡Listo! Tu turno está confirmado para %s a las %s. La zona es %s; te envío la dirección exacta más cerca de la hora.",
		"slot_taken":        "Lo siento, ese horario se acaba de ocupar. Libres ahora:\n%s",
		"past_time":         "Ese horario ya pasó. ¿Puedes elegir otro?",
		"which_time":        "¿Qué horario prefieres? Pídeme los horarios disponibles si quieres la lista.",
		"have_booking":      "Ya tienes un turno el %s a las %s. Solo puedo reservar otro cuando ese termine o se cancele.",
		"booking_time":      "Tu turno es el %s a las %s.",
		"address_approx":    "Estamos en la zona de %s. Te envío la dirección exacta más cerca de tu turno.",
		"address_exact":     "La dirección es: %s. ¡Hasta pronto!",
		"no_booking":        "No tienes un turno activo en este momento. ¿Quieres reservar?",
		"cancel_ask":        "¿Quieres cancelar tu turno del %s a las %s?",
		"cancelled":         "Tu turno fue cancelado. Puedes reservar de nuevo cuando quieras.",
		"cancel_nothing":    "No hay ningún turno para cancelar. ¿Quieres reservar uno?",
		"arrival_ack":       "¡Perfecto, hasta ahora!",
		"reassurance":       "Todo listo para el %s a las %s. ¿Algo más?",
		"media":             "Encuentras fotos de nuestro trabajo en nuestro perfil.",
		"off_topic_1":       "Estoy aquí para ayudarte con turnos. ¿Quieres ver los horarios disponibles?",
		"off_topic_2":       "Sigamos con tu reserva. ¿Te muestro los horarios disponibles?",
		"away_notice":       "Estamos ausentes por el momento y respondemos en cuanto podamos.",
		"no_show_warning":   "Te extrañamos en tu último turno. La próxima vez cancela con anticipación, por favor.",
		"no_show_terminal":  "Por ausencias repetidas, este número ya no puede reservar con nosotros.",
		"retry":             "Perdón, algo salió mal de mi lado. ¿Puedes enviarlo de nuevo?",
	},
}

// NoShowNotice renders the localized message sent after a no-show is
// recorded: a warning below the block threshold, a terminal notice at it.
func NoShowNotice(lang string, terminal bool) string {
	if terminal {
		return reply(lang, "no_show_terminal")
	}
	return reply(lang, "no_show_warning")
}

// reply renders a localized template, falling back to English for unknown
// languages.
func reply(lang, key string, args ...interface{}) string {
	table, ok := replyTable[lang]
	if !ok {
		table = replyTable["en"]
	}
	tmpl, ok := table[key]
	if !ok {
		tmpl = replyTable["en"][key]
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
