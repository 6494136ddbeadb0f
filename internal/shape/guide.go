// Package shape makes peer assertion payloads observable without blocking
// or repairing them. It is a guiderail, not a gatekeeper: the guide reports
// divergence from the minimal contract and never mutates, coerces, or
// defaults the payload — callers decide whether to skip ingestion.
package shape

// #region observation

// Observation is the result of inspecting a payload's shape.
type Observation struct {
	Conforming bool
	Reason     string
	Hints      map[string]any
}

// #endregion observation

// #region observe

// Observe inspects a decoded payload against the minimal assertion contract:
// assertion text at one of the known positions and a parseable confidence
// number at one of the known positions. It checks presence, not value
// validity, and leaves the payload untouched.
func Observe(payload any) Observation {
	hints := map[string]any{}

	obj, ok := payload.(map[string]any)
	if !ok {
		return Observation{
			Conforming: false,
			Reason:     "non_conforming assertion: not a JSON object",
			Hints:      hints,
		}
	}

	_, _, assertionPresent := FindAssertion(obj)
	_, _, confidencePresent := FindConfidence(obj)

	switch {
	case !assertionPresent && !confidencePresent:
		return Observation{
			Conforming: false,
			Reason:     "non_conforming assertion: missing assertion and confidence",
			Hints:      hints,
		}
	case !assertionPresent:
		return Observation{
			Conforming: false,
			Reason:     "non_conforming assertion: missing assertion",
			Hints:      hints,
		}
	case !confidencePresent:
		return Observation{
			Conforming: false,
			Reason:     "non_conforming assertion: missing confidence",
			Hints:      hints,
		}
	}

	// Pass-through identifying fields for caller-side logging.
	for _, key := range []string{"core_name", "assertion_id", "timestamp"} {
		if v, present := obj[key]; present {
			hints[key] = v
		}
	}

	return Observation{
		Conforming: true,
		Reason:     "conforming assertion",
		Hints:      hints,
	}
}

// #endregion observe
