package webhook

import (
	"fmt"

	"github.com/alovak/cardflow-checkout/checkout/models"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// EventCode names the event a notification item reports, in the
// processor's SCREAMING_SNAKE_CASE.
type EventCode string

const (
	EventAuthorisation            EventCode = "AUTHORISATION"
	EventAuthorisationAdjustment  EventCode = "AUTHORISATION_ADJUSTMENT"
	EventCancellation             EventCode = "CANCELLATION"
	EventCancelOrRefund           EventCode = "CANCEL_OR_REFUND"
	EventCapture                  EventCode = "CAPTURE"
	EventCaptureFailed            EventCode = "CAPTURE_FAILED"
	EventExpire                   EventCode = "EXPIRE"
	EventHandledExternally        EventCode = "HANDLED_EXTERNALLY"
	EventOrderOpened              EventCode = "ORDER_OPENED"
	EventOrderClosed              EventCode = "ORDER_CLOSED"
	EventRefund                   EventCode = "REFUND"
	EventRefundFailed             EventCode = "REFUND_FAILED"
	EventRefundedReversed         EventCode = "REFUNDED_REVERSED"
	EventRefundWithData           EventCode = "REFUND_WITH_DATA"
	EventReportAvailable          EventCode = "REPORT_AVAILABLE"
	EventVoidPendingRefund        EventCode = "VOID_PENDING_REFUND"
	EventChargeback               EventCode = "CHARGEBACK"
	EventChargebackReversed       EventCode = "CHARGEBACK_REVERSED"
	EventNotificationOfChargeback EventCode = "NOTIFICATION_OF_CHARGEBACK"
	EventNotificationOfFraud      EventCode = "NOTIFICATION_OF_FRAUD"
	EventPrearbitrationLost       EventCode = "PREARBITRATION_LOST"
	EventPrearbitrationWon        EventCode = "PREARBITRATION_WON"
	EventRequestForInformation    EventCode = "REQUEST_FOR_INFORMATION"
	EventSecondChargeback         EventCode = "SECOND_CHARGEBACK"
	EventPayoutExpire             EventCode = "PAYOUT_EXPIRE"
	EventPayoutDecline            EventCode = "PAYOUT_DECLINE"
	EventPayoutThirdparty         EventCode = "PAYOUT_THIRDPARTY"
	EventPaidoutReversed          EventCode = "PAIDOUT_REVERSED"
	EventOfferClosed              EventCode = "OFFER_CLOSED"
	EventRecurringContract        EventCode = "RECURRING_CONTRACT"
	EventPostponedRefund          EventCode = "POSTPONED_REFUND"
	EventAuthentication           EventCode = "AUTHENTICATION"
	EventManualReviewAccept       EventCode = "MANUAL_REVIEW_ACCEPT"
	EventManualReviewReject       EventCode = "MANUAL_REVIEW_REJECT"
)

var eventCodes = map[EventCode]struct{}{
	EventAuthorisation:            {},
	EventAuthorisationAdjustment:  {},
	EventCancellation:             {},
	EventCancelOrRefund:           {},
	EventCapture:                  {},
	EventCaptureFailed:            {},
	EventExpire:                   {},
	EventHandledExternally:        {},
	EventOrderOpened:              {},
	EventOrderClosed:              {},
	EventRefund:                   {},
	EventRefundFailed:             {},
	EventRefundedReversed:         {},
	EventRefundWithData:           {},
	EventReportAvailable:          {},
	EventVoidPendingRefund:        {},
	EventChargeback:               {},
	EventChargebackReversed:       {},
	EventNotificationOfChargeback: {},
	EventNotificationOfFraud:      {},
	EventPrearbitrationLost:       {},
	EventPrearbitrationWon:        {},
	EventRequestForInformation:    {},
	EventSecondChargeback:         {},
	EventPayoutExpire:             {},
	EventPayoutDecline:            {},
	EventPayoutThirdparty:         {},
	EventPaidoutReversed:          {},
	EventOfferClosed:              {},
	EventRecurringContract:        {},
	EventPostponedRefund:          {},
	EventAuthentication:           {},
	EventManualReviewAccept:       {},
	EventManualReviewReject:       {},
}

// EventCodes returns the known vocabulary, sorted.
func EventCodes() []EventCode {
	codes := maps.Keys(eventCodes)
	slices.Sort(codes)
	return codes
}

// ParseEventCode fails with *models.UnknownVariantError for codes outside
// the vocabulary.
func ParseEventCode(s string) (EventCode, error) {
	code := EventCode(s)
	if _, ok := eventCodes[code]; !ok {
		known := EventCodes()
		expected := make([]string, len(known))
		for i, c := range known {
			expected[i] = string(c)
		}
		return "", &models.UnknownVariantError{Field: "eventCode", Tag: s, Expected: expected}
	}
	return code, nil
}

func (c EventCode) Valid() bool {
	_, ok := eventCodes[c]
	return ok
}

func (c EventCode) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown event code %q", string(c))
	}
	return []byte(c), nil
}

func (c *EventCode) UnmarshalText(text []byte) error {
	code, err := ParseEventCode(string(text))
	if err != nil {
		return err
	}
	*c = code
	return nil
}
