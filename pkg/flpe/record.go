package flpe

// RunSet holds the parameters of all six algorithms for one run type.
type RunSet struct {
	MetroMan MetroMan `json:"MetroMan" yaml:"MetroMan"`
	BAM      BAM      `json:"BAM" yaml:"BAM"`
	HiVDI    HiVDI    `json:"HiVDI" yaml:"HiVDI"`
	MOMMA    MOMMA    `json:"MOMMA" yaml:"MOMMA"`
	SADS     SADS     `json:"SADS" yaml:"SADS"`
	SIC4DVar SIC4DVar `json:"SIC4DVar" yaml:"SIC4DVar"`
}

// All returns the six parameter records in Algorithms() order.
func (s *RunSet) All() []AlgorithmParams {
	return []AlgorithmParams{s.MetroMan, s.BAM, s.HiVDI, s.MOMMA, s.SADS, s.SIC4DVar}
}

// Get returns the parameters of one algorithm.
func (s *RunSet) Get(a Algorithm) (AlgorithmParams, bool) {
	for _, p := range s.All() {
		if p.Algorithm() == a {
			return p, true
		}
	}
	return nil, false
}

// Set stores p in the slot of its algorithm.
func (s *RunSet) Set(p AlgorithmParams) {
	switch v := p.(type) {
	case MetroMan:
		s.MetroMan = v
	case BAM:
		s.BAM = v
	case HiVDI:
		s.HiVDI = v
	case MOMMA:
		s.MOMMA = v
	case SADS:
		s.SADS = v
	case SIC4DVar:
		s.SIC4DVar = v
	}
}

// SetBias replaces the relative systematic bias of one algorithm.
func (s *RunSet) SetBias(a Algorithm, bias Values) {
	switch a {
	case AlgMetroMan:
		s.MetroMan.SbQRel = bias
	case AlgBAM:
		s.BAM.SbQRel = bias
	case AlgHiVDI:
		s.HiVDI.SbQRel = bias
	case AlgMOMMA:
		s.MOMMA.SbQRel = bias
	case AlgSADS:
		s.SADS.SbQRel = bias
	case AlgSIC4DVar:
		s.SIC4DVar.SbQRel = bias
	}
}

// Bias returns the relative systematic bias of one algorithm.
func (s *RunSet) Bias(a Algorithm) Values {
	p, ok := s.Get(a)
	if !ok {
		return nil
	}
	params := p.Params()
	return params[len(params)-1].Values
}

// NonRunSet returns the placeholder set for the run type that was not
// computed: every parameter, bias included, is NonRunSentinel.
func NonRunSet() RunSet {
	return fill(Sentinel)
}

// NoDataSet returns the placeholder set for a reach without algorithm
// output: every parameter is NaN.
func NoDataSet() RunSet {
	return fill(NaN)
}

func fill(v func() Values) RunSet {
	return RunSet{
		MetroMan: MetroMan{Ninf: v(), P: v(), Abar: v(), SbQRel: v()},
		BAM:      BAM{N: v(), Abar: v(), SbQRel: v()},
		HiVDI:    HiVDI{Alpha: v(), Beta: v(), Abar: v(), SbQRel: v()},
		MOMMA:    MOMMA{B: v(), H: v(), Save: v(), SbQRel: v()},
		SADS:     SADS{N: v(), Abar: v(), SbQRel: v()},
		SIC4DVar: SIC4DVar{N: v(), Abar: v(), SbQRel: v()},
	}
}

// Record is the reconciled FLPE parameter record of one reach.
type Record struct {
	ReachID      int64        `json:"reach_id" yaml:"reach_id"`
	RunType      RunType      `json:"run_type" yaml:"run_type"`
	Layout       string       `json:"layout,omitempty" yaml:"layout,omitempty"`
	Availability Availability `json:"availability" yaml:"availability"`

	Unconstrained RunSet `json:"unconstrained" yaml:"unconstrained"`
	Constrained   RunSet `json:"constrained" yaml:"constrained"`
}

// NewRecord places requested in the branch of runType and the non-run
// placeholder set in the other branch.
func NewRecord(reachID int64, runType RunType, requested RunSet) *Record {
	r := &Record{ReachID: reachID, RunType: runType, Availability: Available}
	*r.Branch(runType) = requested
	*r.Branch(runType.Other()) = NonRunSet()
	return r
}

// NoDataRecord returns the record of a reach whose algorithm outputs are
// unavailable: both branches hold the NaN set.
func NoDataRecord(reachID int64, runType RunType) *Record {
	return &Record{
		ReachID:       reachID,
		RunType:       runType,
		Availability:  Unavailable,
		Unconstrained: NoDataSet(),
		Constrained:   NoDataSet(),
	}
}

// Branch returns the run set of rt.
func (r *Record) Branch(rt RunType) *RunSet {
	if rt == Constrained {
		return &r.Constrained
	}
	return &r.Unconstrained
}

// Requested returns the branch holding real data.
func (r *Record) Requested() *RunSet {
	return r.Branch(r.RunType)
}

// Each calls fn for every run type and algorithm in record order.
func (r *Record) Each(fn func(RunType, AlgorithmParams)) {
	for _, rt := range RunTypes() {
		for _, p := range r.Branch(rt).All() {
			fn(rt, p)
		}
	}
}
