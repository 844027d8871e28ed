package domain

// Intent is the classified purpose of an inbound message. The classifier
// lives outside this service; intents arrive resolved and are used here as
// cache-partitioning and TTL-selection keys.
type Intent string

// The known intent catalog. This is the single authoritative list; the
// response cache TTL policy is keyed by these values.
const (
	IntentKnowCandidate     Intent = "conocer_candidato"
	IntentGreetingSupport   Intent = "saludo_apoyo"
	IntentVolunteering      Intent = "colaboracion_voluntariado"
	IntentCampaignEvent     Intent = "cita_campana"
	IntentFunctionalRequest Intent = "solicitud_funcional"
	IntentComplaint         Intent = "quejas"
	IntentMalicious         Intent = "malicioso"
	IntentHumanHandoff      Intent = "atencion_humano"
	IntentInternalTeam      Intent = "atencion_equipo_interno"
	IntentRegistration      Intent = "registration_response"
	IntentDataUpdate        Intent = "actualizacion_datos"
	IntentGeneral           Intent = "general"
)

// OrGeneral returns the intent, or IntentGeneral when empty. Cache keys
// never embed an empty intent segment.
func (i Intent) OrGeneral() Intent {
	if i == "" {
		return IntentGeneral
	}
	return i
}
