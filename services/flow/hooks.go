package flow

import "jamestronic/models"

// hookCatalogue maps canonical hesitation tags to their conversion action.
// Messages are structured hints for the presentation layer; the renderer
// owns the final copy.
var hookCatalogue = map[string]models.ConversionHookResult{
	models.HesitationPrice: {
		ActionType: models.ActionReassurance,
		Message:    "Reassure on price: upfront quote, no hidden fees, value guarantee",
	},
	models.HesitationSLA: {
		ActionType: models.ActionReassurance,
		Message:    "Reassure on turnaround: repair time estimate and on-time guarantee",
	},
}

// Confidence thresholds that add hooks independent of hesitation tags.
const (
	escalateBelow   = 25.0
	incentiveBelow  = 40.0
	escalateMessage = "Offer direct human contact to rescue the booking"
)

// BuildConversionHooks produces one hook per hesitation point in the
// cumulative set, in the order the points were first detected, then
// appends confidence-threshold hooks. Pure and deterministic; an empty
// hesitation set with healthy confidence yields an empty list.
func BuildConversionHooks(hesitationPoints []string, confidence float64, state models.BookingState) []models.ConversionHookResult {
	hooks := make([]models.ConversionHookResult, 0, len(hesitationPoints))

	for _, point := range hesitationPoints {
		if hook, ok := hookCatalogue[point]; ok {
			hook.TargetHesitation = point
			hooks = append(hooks, hook)
			continue
		}
		// Open tag set: unknown tags still get a generic reassurance.
		hooks = append(hooks, models.ConversionHookResult{
			ActionType:       models.ActionReassurance,
			Message:          "Reassure on " + point,
			TargetHesitation: point,
		})
	}

	if confidence < incentiveBelow && len(hesitationPoints) > 0 {
		hooks = append(hooks, models.ConversionHookResult{
			ActionType:       models.ActionIncentive,
			Message:          "Offer a retention incentive against " + hesitationPoints[0],
			TargetHesitation: hesitationPoints[0],
		})
	}
	if confidence < escalateBelow {
		hooks = append(hooks, models.ConversionHookResult{
			ActionType: models.ActionEscalation,
			Message:    escalateMessage,
		})
	}

	return hooks
}
