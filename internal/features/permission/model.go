package permission

// Permission keys are dot-delimited module.screen.action strings, e.g.
// "leads.detail.helpRequest". The catalog below is the single source of truth:
// any key a role references must exist here.

type ScreenDef struct {
	Screen  string   `json:"screen"`
	Actions []string `json:"actions"`
}

type ModuleDef struct {
	Module  string      `json:"module"`
	Screens []ScreenDef `json:"screens"`
}
