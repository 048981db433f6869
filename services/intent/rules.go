// File: services/intent/rules.go
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"bookline/models"
)

// Deterministic per-language pattern rules. These run before any model
// call; only an inconclusive match escalates to the generative fallback.

var keywordTable = map[string]map[models.Intent][]string{
	"en": {
		models.IntentGreeting:          {"hi", "hello", "hey", "good morning", "good afternoon", "good evening"},
		models.IntentAvailabilityQuery: {"available", "availability", "opening", "openings", "free slots", "what times", "when can i", "book an appointment", "schedule an appointment", "any slots"},
		models.IntentPriceQuery:        {"price", "prices", "cost", "how much", "rates"},
		models.IntentExtrasQuery:       {"extras", "add-on", "addons", "add ons", "what's included", "whats included"},
		models.IntentCancelRequest:     {"cancel", "call off", "can't make it", "cant make it", "won't make it"},
		models.IntentAddressQuery:      {"address", "where are you", "where is it", "location", "directions", "how do i get"},
		models.IntentArrivalNotice:     {"i'm here", "im here", "i have arrived", "arrived", "i'm outside", "im outside", "on my way", "omw"},
		models.IntentTimeQuery:         {"what time is my", "when is my", "my appointment", "my booking"},
		models.IntentMediaRequest:      {"photo", "photos", "picture", "pictures", "pic", "pics", "video", "videos"},
		models.IntentBookingConfirm:    {"yes", "yep", "yeah", "confirm", "confirmed", "ok", "okay", "sure", "sounds good", "that works", "book it", "deal"},
		models.IntentServiceChoice:     {"i want the", "i'd like the", "id like the", "i choose"},
	},
	"pt": {
		models.IntentGreeting:          {"oi", "ola", "olá", "bom dia", "boa tarde", "boa noite", "e aí", "e ai"},
		models.IntentAvailabilityQuery: {"horarios", "horários", "disponivel", "disponível", "disponibilidade", "agenda", "vagas", "quando posso", "marcar", "agendar"},
		models.IntentPriceQuery:        {"preco", "preço", "valor", "valores", "quanto custa", "quanto é", "quanto e", "tabela"},
		models.IntentExtrasQuery:       {"adicional", "adicionais", "extras", "o que inclui", "incluso"},
		models.IntentCancelRequest:     {"cancelar", "desmarcar", "nao vou conseguir", "não vou conseguir", "nao consigo ir", "não consigo ir"},
		models.IntentAddressQuery:      {"endereco", "endereço", "onde fica", "onde é", "onde e", "localizacao", "localização", "como chegar"},
		models.IntentArrivalNotice:     {"cheguei", "to aqui", "tô aqui", "estou aqui", "estou chegando", "a caminho", "chegando"},
		models.IntentTimeQuery:         {"que horas é meu", "que horas e meu", "quando é meu", "quando e meu", "meu horario", "meu horário", "minha marcacao", "minha marcação", "meu agendamento"},
		models.IntentMediaRequest:      {"foto", "fotos", "video", "vídeo", "videos", "vídeos"},
		models.IntentBookingConfirm:    {"sim", "confirmo", "confirmado", "fechado", "pode ser", "beleza", "bora", "combinado", "isso"},
		models.IntentServiceChoice:     {"quero o", "quero a", "prefiro o", "prefiro a", "escolho"},
	},
	"es": {
		models.IntentGreeting:          {"hola", "buenos dias", "buenos días", "buenas tardes", "buenas noches", "buenas"},
		models.IntentAvailabilityQuery: {"horarios", "disponible", "disponibilidad", "agenda", "turnos", "cuando puedo", "cuándo puedo", "reservar", "agendar"},
		models.IntentPriceQuery:        {"precio", "precios", "valor", "cuanto cuesta", "cuánto cuesta", "tarifa"},
		models.IntentExtrasQuery:       {"adicional", "adicionales", "extras", "que incluye", "qué incluye"},
		models.IntentCancelRequest:     {"cancelar", "anular", "no puedo ir", "no voy a poder"},
		models.IntentAddressQuery:      {"direccion", "dirección", "donde queda", "dónde queda", "donde es", "dónde es", "ubicacion", "ubicación", "como llegar", "cómo llegar"},
		models.IntentArrivalNotice:     {"llegue", "llegué", "estoy aqui", "estoy aquí", "estoy afuera", "en camino", "llegando"},
		models.IntentTimeQuery:         {"a que hora es mi", "a qué hora es mi", "cuando es mi", "cuándo es mi", "mi turno", "mi cita", "mi reserva"},
		models.IntentMediaRequest:      {"foto", "fotos", "video", "videos"},
		models.IntentBookingConfirm:    {"si", "sí", "confirmo", "confirmado", "dale", "de acuerdo", "listo", "perfecto"},
		models.IntentServiceChoice:     {"quiero el", "quiero la", "prefiero el", "prefiero la", "elijo"},
	},
}

// Check order: more specific intents first so "cancel my booking" never
// lands on booking_confirm via "ok".
var ruleOrder = []models.Intent{
	models.IntentCancelRequest,
	models.IntentArrivalNotice,
	models.IntentTimeQuery,
	models.IntentAddressQuery,
	models.IntentPriceQuery,
	models.IntentExtrasQuery,
	models.IntentMediaRequest,
	models.IntentAvailabilityQuery,
	models.IntentServiceChoice,
	models.IntentGreeting,
	models.IntentBookingConfirm,
}

var (
	durationRe    = regexp.MustCompile(`(\d+)\s*(?:min|mins|minutos?|minutes?)\b`)
	hoursRe       = regexp.MustCompile(`(\d+)\s*(?:h\b|hora|horas|hour|hours)`)
	literalTimeRe = regexp.MustCompile(`\b(\d{1,2})[:h](\d{2})\b`)
	amPmRe        = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	ordinalWordRe = regexp.MustCompile(`\b(?:first|second|third|fourth|fifth|primeir[oa]|segund[oa]|terceir[oa]|quart[oa]|quint[oa]|primer[oa]?|tercer[oa]?|cuart[oa]|quint[oa])\b`)
	bareNumberRe  = regexp.MustCompile(`^\s*(?:op[cç][aã]o\s+|option\s+|opci[oó]n\s+|numero\s+|número\s+|number\s+)?(\d{1,2})\s*$`)
	nthRe         = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th|º|ª)\b`)
)

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"primeiro": 1, "primeira": 1, "segundo": 2, "segunda": 2,
	"terceiro": 3, "terceira": 3, "quarto": 4, "quarta": 4, "quinto": 5, "quinta": 5,
	"primer": 1, "primero": 1, "primera": 1, "tercer": 3, "tercero": 3, "tercera": 3,
	"cuarto": 4, "cuarta": 4,
}

var langMarkers = map[string][]string{
	"pt": {"você", "voce", "não", "nao", "obrigado", "obrigada", "horário", "horario", "preço", "amanhã", "amanha", "quero", "tem ", "oi"},
	"es": {"usted", "gracias", "mañana", "quiero", "tienes", "cuánto", "cuanto", "hola", "por favor", "turno"},
	"en": {"the ", "you", "please", "thanks", "tomorrow", "want", "how", "what"},
}

// DetectLanguage scores marker hits per language, keeping the previous
// detection when nothing distinguishes the text.
func DetectLanguage(text, previous string) string {
	lower := strings.ToLower(text)
	best, bestScore := previous, 0
	for lang, markers := range langMarkers {
		score := 0
		for _, m := range markers {
			if strings.Contains(lower, m) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = lang, score
		}
	}
	if best == "" {
		return "en"
	}
	return best
}

// ExtractEntities pulls structured values out of free text so downstream
// slot/duration/price resolution stays deterministic.
func ExtractEntities(text, lang string) models.Entities {
	lower := strings.ToLower(text)
	ents := models.Entities{LiteralMin: -1, Language: lang}

	if m := durationRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			ents.DurationMin = v
		}
	} else if m := hoursRe.FindStringSubmatch(lower); m != nil {
		// "2h" style only counts as a duration when no minutes follow;
		// "14h30" is a literal time and handled below.
		if !literalTimeRe.MatchString(lower) {
			if v, err := strconv.Atoi(m[1]); err == nil && v <= 12 {
				ents.DurationMin = v * 60
			}
		}
	}

	if m := amPmRe.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		min := 0
		if m[2] != "" {
			min, _ = strconv.Atoi(m[2])
		}
		if m[3] == "pm" && h < 12 {
			h += 12
		}
		if m[3] == "am" && h == 12 {
			h = 0
		}
		if h < 24 && min < 60 {
			ents.LiteralMin = h*60 + min
		}
	} else if m := literalTimeRe.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		if h < 24 && min < 60 {
			ents.LiteralMin = h*60 + min
		}
	}

	if m := bareNumberRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v >= 1 && v <= 30 {
			ents.Ordinal = v
		}
	} else if m := ordinalWordRe.FindString(lower); m != "" {
		ents.Ordinal = ordinalWords[m]
	} else if m := nthRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v >= 1 && v <= 30 {
			ents.Ordinal = v
		}
	}

	return ents
}

// matchRules runs the deterministic tables and returns the matched intent
// with zero confidence when nothing fired.
func matchRules(text, lang string, ents models.Entities) (models.Intent, float64) {
	lower := strings.ToLower(strings.TrimSpace(text))
	table, ok := keywordTable[lang]
	if !ok {
		table = keywordTable["en"]
	}

	for _, it := range ruleOrder {
		for _, kw := range table[it] {
			if matchKeyword(lower, kw) {
				return it, 0.9
			}
		}
	}

	// Entity-only texts: a bare ordinal or literal time is a slot pick, a
	// bare duration is a duration choice.
	if ents.Ordinal > 0 || ents.LiteralMin >= 0 {
		return models.IntentSlotSelection, 0.85
	}
	if ents.DurationMin > 0 {
		return models.IntentDurationChoice, 0.85
	}

	return "", 0
}

// matchKeyword matches multi-word keywords as substrings and single words
// on word boundaries, so "si" never fires inside "sitio".
func matchKeyword(lower, kw string) bool {
	if strings.ContainsRune(kw, ' ') || strings.HasSuffix(kw, " ") {
		return strings.Contains(lower, kw)
	}
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?'
	}) {
		if w == kw {
			return true
		}
	}
	return false
}
