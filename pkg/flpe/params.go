package flpe

// Param is one named parameter of an algorithm, named as in the source files.
type Param struct {
	Name   string
	Values Values
}

// AlgorithmParams is implemented by the six per-algorithm parameter records.
type AlgorithmParams interface {
	Algorithm() Algorithm
	// Params lists the parameters in a fixed order, bias last.
	Params() []Param
}

// MetroMan parameters.
type MetroMan struct {
	Ninf   Values `json:"ninf" yaml:"ninf"`
	P      Values `json:"p" yaml:"p"`
	Abar   Values `json:"Abar" yaml:"Abar"`
	SbQRel Values `json:"sbQ_rel" yaml:"sbQ_rel"`
}

// Algorithm implements AlgorithmParams.
func (MetroMan) Algorithm() Algorithm { return AlgMetroMan }

// Params implements AlgorithmParams.
func (m MetroMan) Params() []Param {
	return []Param{{"ninf", m.Ninf}, {"p", m.P}, {"Abar", m.Abar}, {"sbQ_rel", m.SbQRel}}
}

// BAM parameters (geoBAM in the per-file layout, neoBAM in the integrator).
type BAM struct {
	N      Values `json:"n" yaml:"n"`
	Abar   Values `json:"Abar" yaml:"Abar"`
	SbQRel Values `json:"sbQ_rel" yaml:"sbQ_rel"`
}

// Algorithm implements AlgorithmParams.
func (BAM) Algorithm() Algorithm { return AlgBAM }

// Params implements AlgorithmParams.
func (b BAM) Params() []Param {
	return []Param{{"n", b.N}, {"Abar", b.Abar}, {"sbQ_rel", b.SbQRel}}
}

// HiVDI parameters.
type HiVDI struct {
	Alpha  Values `json:"alpha" yaml:"alpha"`
	Beta   Values `json:"beta" yaml:"beta"`
	Abar   Values `json:"Abar" yaml:"Abar"`
	SbQRel Values `json:"sbQ_rel" yaml:"sbQ_rel"`
}

// Algorithm implements AlgorithmParams.
func (HiVDI) Algorithm() Algorithm { return AlgHiVDI }

// Params implements AlgorithmParams.
func (h HiVDI) Params() []Param {
	return []Param{{"alpha", h.Alpha}, {"beta", h.Beta}, {"Abar", h.Abar}, {"sbQ_rel", h.SbQRel}}
}

// MOMMA parameters: zero-flow stage, bankfull stage and mean slope.
type MOMMA struct {
	B      Values `json:"B" yaml:"B"`
	H      Values `json:"H" yaml:"H"`
	Save   Values `json:"Save" yaml:"Save"`
	SbQRel Values `json:"sbQ_rel" yaml:"sbQ_rel"`
}

// Algorithm implements AlgorithmParams.
func (MOMMA) Algorithm() Algorithm { return AlgMOMMA }

// Params implements AlgorithmParams.
func (m MOMMA) Params() []Param {
	return []Param{{"B", m.B}, {"H", m.H}, {"Save", m.Save}, {"sbQ_rel", m.SbQRel}}
}

// SADS parameters.
type SADS struct {
	N      Values `json:"n" yaml:"n"`
	Abar   Values `json:"Abar" yaml:"Abar"`
	SbQRel Values `json:"sbQ_rel" yaml:"sbQ_rel"`
}

// Algorithm implements AlgorithmParams.
func (SADS) Algorithm() Algorithm { return AlgSADS }

// Params implements AlgorithmParams.
func (s SADS) Params() []Param {
	return []Param{{"n", s.N}, {"Abar", s.Abar}, {"sbQ_rel", s.SbQRel}}
}

// SIC4DVar parameters.
type SIC4DVar struct {
	N      Values `json:"n" yaml:"n"`
	Abar   Values `json:"Abar" yaml:"Abar"`
	SbQRel Values `json:"sbQ_rel" yaml:"sbQ_rel"`
}

// Algorithm implements AlgorithmParams.
func (SIC4DVar) Algorithm() Algorithm { return AlgSIC4DVar }

// Params implements AlgorithmParams.
func (s SIC4DVar) Params() []Param {
	return []Param{{"n", s.N}, {"Abar", s.Abar}, {"sbQ_rel", s.SbQRel}}
}
