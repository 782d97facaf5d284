package model

// websocket message envelope
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

const (
	MsgTranslate  = "translate"
	MsgElement    = "element"
	MsgProgress   = "progress"
	MsgTranslated = "translated"
	MsgFailed     = "failed"
	MsgDerived    = "derived"
	MsgError      = "error"
)

type TranslateRequest struct {
	Model             string   `json:"model"` // building document, YAML
	IncludeHVAC       *bool    `json:"include_hvac,omitempty"`
	LeakageDescriptor string   `json:"leakage_descriptor,omitempty"`
	LeakageRate       float64  `json:"leakage_rate,omitempty"`
	Terrain           string   `json:"terrain,omitempty"`
	WindSpeed         *float64 `json:"wind_speed,omitempty"`
	WindDirection     float64  `json:"wind_direction,omitempty"`
}

type TranslateResult struct {
	Valid    bool     `json:"valid"`
	Prj      string   `json:"prj,omitempty"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}

type ProgressEvent struct {
	Phase string `json:"phase"`
	Step  int    `json:"step"`
	Max   int    `json:"max"`
}

type ElementRequest struct {
	Name     string  `json:"name"`
	Flow     float64 `json:"flow"`
	Exponent float64 `json:"exponent,omitempty"`
	DP       float64 `json:"dp,omitempty"`
}
