// Package model defines shared message structures for SensorBridge.
package model

import "net/url"

// Reading is one line of sensor output. Values are kept exactly as the
// board printed them; nothing is converted before it is forwarded.
type Reading struct {
	Temperature string `json:"temp"`
	Humidity    string `json:"humd"`
	Gases       string `json:"gases"`
	Rain        string `json:"wet"`
}

// Params builds the query parameters sent to the logging endpoint.
func (r Reading) Params(operation string) url.Values {
	return url.Values{
		"sts":   {operation},
		"temp":  {r.Temperature},
		"humd":  {r.Humidity},
		"gases": {r.Gases},
		"wet":   {r.Rain},
	}
}
