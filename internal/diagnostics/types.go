// Package diagnostics runs the three per-series analyzers over a return
// panel: summary statistics, stationarity tests, and stylized facts.
//
// Analyzers are stateless and column-independent. A numerical failure in one
// test for one series is recorded in that row (NaN values, "Error" verdict)
// and never aborts the other tests or series.
package diagnostics

// Verdict is the reported conclusion of a stationarity test.
type Verdict string

const (
	VerdictStationary    Verdict = "Stationary"
	VerdictNonStationary Verdict = "Non-stationary"
	VerdictError         Verdict = "Error"
)

// SummaryRow holds the summary statistics of one return series.
type SummaryRow struct {
	Series         string
	Mean           float64
	Std            float64
	Skewness       float64
	ExcessKurtosis float64
	JBStatistic    float64
	JBPValue       float64
	Min            float64
	Max            float64
	Q25            float64
	Q75            float64
	Observations   int
}

// StationarityRow holds the ADF and KPSS outcomes for one series.
type StationarityRow struct {
	Series        string
	ADFStatistic  float64
	ADFPValue     float64
	ADFResult     Verdict
	KPSSStatistic float64
	KPSSPValue    float64
	KPSSResult    Verdict
}

// StylizedRow holds the stylized-fact diagnostics for one series.
type StylizedRow struct {
	Series         string
	LjungBoxStat   float64
	LjungBoxPValue float64
	ARCHLMStat     float64
	ARCHLMPValue   float64
	HillTailIndex  float64
	ExcessKurtosis float64
}

// TestOutcome carries either a test result or the reason it failed. A failed
// outcome renders as NaN fields; the error is kept for logging so an "Error"
// cell in the output is an inspectable event, not a swallowed exception.
type TestOutcome struct {
	Statistic float64
	PValue    float64
	Err       error
}

// Failed reports whether the test could not produce a result.
func (o TestOutcome) Failed() bool { return o.Err != nil }
