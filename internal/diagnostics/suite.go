package diagnostics

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/eda/internal/config"
	"github.com/aristath/eda/internal/panel"
	"github.com/aristath/eda/pkg/formulas"
)

// Suite runs the diagnostic analyzers over a return panel.
type Suite struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewSuite creates a diagnostics suite.
func NewSuite(cfg *config.Config, log zerolog.Logger) *Suite {
	return &Suite{
		cfg: cfg,
		log: log.With().Str("component", "diagnostics").Logger(),
	}
}

// Summary computes summary statistics for every series in the panel. Rows
// cover exactly the panel's columns, in panel order.
func (s *Suite) Summary(p *panel.Panel) []SummaryRow {
	rows := make([]SummaryRow, 0, p.NumColumns())
	for i, name := range p.Columns {
		x := p.Series[i]
		jb, jbP := formulas.JarqueBera(x)
		rows = append(rows, SummaryRow{
			Series:         name,
			Mean:           formulas.Mean(x),
			Std:            formulas.StdDev(x),
			Skewness:       formulas.Skewness(x),
			ExcessKurtosis: formulas.ExcessKurtosis(x),
			JBStatistic:    jb,
			JBPValue:       jbP,
			Min:            formulas.Min(x),
			Max:            formulas.Max(x),
			Q25:            formulas.Quantile(x, 0.25),
			Q75:            formulas.Quantile(x, 0.75),
			Observations:   len(x),
		})
	}
	return rows
}

// Stationarity runs ADF and KPSS on every series. ADF's null is a unit root,
// so a p-value below alpha reads "Stationary"; KPSS's null is stationarity,
// so a p-value above alpha reads "Stationary". A numerical failure in either
// test marks only that test's cells as Error.
func (s *Suite) Stationarity(p *panel.Panel) []StationarityRow {
	alpha := s.cfg.Tests.ADFAlpha
	rows := make([]StationarityRow, 0, p.NumColumns())
	for i, name := range p.Columns {
		x := p.Series[i]
		row := StationarityRow{Series: name}

		adf := s.runADF(name, x)
		row.ADFStatistic = adf.Statistic
		row.ADFPValue = adf.PValue
		switch {
		case adf.Failed():
			row.ADFResult = VerdictError
		case adf.PValue < alpha:
			row.ADFResult = VerdictStationary
		default:
			row.ADFResult = VerdictNonStationary
		}

		kpss := s.runKPSS(name, x)
		row.KPSSStatistic = kpss.Statistic
		row.KPSSPValue = kpss.PValue
		switch {
		case kpss.Failed():
			row.KPSSResult = VerdictError
		case kpss.PValue > alpha:
			row.KPSSResult = VerdictStationary
		default:
			row.KPSSResult = VerdictNonStationary
		}

		rows = append(rows, row)
	}
	return rows
}

// StylizedFacts computes the Ljung-Box, ARCH-LM, Hill tail index and excess
// kurtosis diagnostics for every series.
func (s *Suite) StylizedFacts(p *panel.Panel) []StylizedRow {
	rows := make([]StylizedRow, 0, p.NumColumns())
	for i, name := range p.Columns {
		x := p.Series[i]

		lb := s.runLjungBox(name, x)
		arch := s.runARCHLM(name, x)

		hill := formulas.HillTailIndex(x, s.cfg.Tails.HillThresholdQuantile)
		if math.IsNaN(hill) {
			s.log.Debug().Str("series", name).Msg("Hill estimator returned no value (insufficient tail mass)")
		}

		rows = append(rows, StylizedRow{
			Series:         name,
			LjungBoxStat:   lb.Statistic,
			LjungBoxPValue: lb.PValue,
			ARCHLMStat:     arch.Statistic,
			ARCHLMPValue:   arch.PValue,
			HillTailIndex:  hill,
			ExcessKurtosis: formulas.ExcessKurtosis(x),
		})
	}
	return rows
}

func (s *Suite) runADF(name string, x []float64) TestOutcome {
	res, err := formulas.ADF(x)
	if err != nil {
		s.log.Warn().Str("series", name).Err(err).Msg("ADF test failed")
		return failedOutcome(err)
	}
	return TestOutcome{Statistic: res.Statistic, PValue: res.PValue}
}

func (s *Suite) runKPSS(name string, x []float64) TestOutcome {
	res, err := formulas.KPSS(x)
	if err != nil {
		s.log.Warn().Str("series", name).Err(err).Msg("KPSS test failed")
		return failedOutcome(err)
	}
	return TestOutcome{Statistic: res.Statistic, PValue: res.PValue}
}

func (s *Suite) runLjungBox(name string, x []float64) TestOutcome {
	res, err := formulas.LjungBox(x, s.cfg.Tests.LBLags)
	if err != nil {
		s.log.Warn().Str("series", name).Err(err).Msg("Ljung-Box test failed")
		return failedOutcome(err)
	}
	return TestOutcome{Statistic: res.Statistic, PValue: res.PValue}
}

func (s *Suite) runARCHLM(name string, x []float64) TestOutcome {
	res, err := formulas.ARCHLM(x, s.cfg.Tests.ARCHLMLags)
	if err != nil {
		s.log.Warn().Str("series", name).Err(err).Msg("ARCH-LM test failed")
		return failedOutcome(err)
	}
	return TestOutcome{Statistic: res.Statistic, PValue: res.PValue}
}

func failedOutcome(err error) TestOutcome {
	return TestOutcome{Statistic: math.NaN(), PValue: math.NaN(), Err: err}
}
