package timeline

import (
	"time"

	"buyback-backend/internal/domain"
)

// fieldValues flattens the order into the dotted field names the step tables
// reference. Values stay untyped because orders that predate the current
// schema carry timestamps in several legacy shapes (epoch numbers, ISO
// strings, Firestore-export maps); coerceTime sorts them out at resolution.
func fieldValues(o *domain.Order) map[string]any {
	values := map[string]any{
		"createdAt":          o.CreatedAt,
		"lastStatusUpdateAt": o.LastStatusUpdateAt,
	}
	// First occurrence wins: history is chronological and a step timestamp
	// should reflect when the milestone was first reached.
	for _, h := range o.StatusHistory {
		key := "statusAt." + string(h.Status)
		if _, ok := values[key]; !ok {
			values[key] = h.ChangedAt
		}
	}
	for key, l := range o.Labels {
		values["labels."+string(key)+".generatedAt"] = l.GeneratedAt
	}
	if o.ReOffer != nil {
		values["reOffer.createdAt"] = o.ReOffer.CreatedAt
		values["reOffer.autoAcceptDate"] = o.ReOffer.AutoAcceptDate
	}
	if o.Reminder.LastSentAt != nil {
		values["reminder.lastSentAt"] = *o.Reminder.LastSentAt
	}
	return values
}

// resolveTimestamp tries each field in order and returns the first value
// that parses. No resolvable field is not an error; the step simply renders
// without a timestamp.
func resolveTimestamp(values map[string]any, fields []string) (time.Time, bool) {
	for _, f := range fields {
		v, ok := values[f]
		if !ok {
			continue
		}
		if ts, ok := coerceTime(v); ok {
			return ts, true
		}
	}
	return time.Time{}, false
}

// epochMillisFloor: numeric values at or above this are epoch milliseconds,
// below it epoch seconds. (Nov 2001 in millis, year ~33658 in seconds.)
const epochMillisFloor = int64(1_000_000_000_000)

// coerceTime accepts the timestamp shapes observed in the orders collection:
// native times, epoch seconds or milliseconds, RFC3339/ISO strings, and
// Firestore-export style maps with a seconds/_seconds field.
func coerceTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case int64:
		return epochToTime(t), t > 0
	case int:
		return epochToTime(int64(t)), t > 0
	case float64:
		return epochToTime(int64(t)), t > 0
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	case map[string]any:
		for _, key := range []string{"seconds", "_seconds"} {
			if secs, ok := t[key]; ok {
				switch s := secs.(type) {
				case int64:
					return time.Unix(s, 0).UTC(), s > 0
				case int:
					return time.Unix(int64(s), 0).UTC(), s > 0
				case float64:
					return time.Unix(int64(s), 0).UTC(), s > 0
				}
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func epochToTime(n int64) time.Time {
	if n >= epochMillisFloor {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
