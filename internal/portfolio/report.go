package portfolio

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"QuoteFolio/internal/model"
)

// Report renders a textual analytical summary: identity, weights, per-asset
// statistics, date-range coverage, and for two or more priced assets the
// log-return correlation matrix with the highest- and lowest-correlated
// pairs. It always returns a string: failures inside the correlation step
// are rendered as an inline warning instead of propagated.
func (p *Portfolio) Report() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Portfolio report: %s\n", p.name))
	b.WriteString(strings.Repeat("=", 24+len(p.name)) + "\n")

	tickers := p.Tickers()
	if len(tickers) == 0 {
		b.WriteString("(empty portfolio: no assets)\n")
		return b.String()
	}

	b.WriteString("\nWeights:\n")
	if p.weights == nil {
		b.WriteString("  (none assigned)\n")
	} else {
		for _, ticker := range tickers {
			if w, ok := p.weights[ticker]; ok {
				b.WriteString(fmt.Sprintf("  %-10s %6.2f%%\n", ticker, w*100))
			} else {
				b.WriteString(fmt.Sprintf("  %-10s (missing)\n", ticker))
			}
		}
	}

	b.WriteString("\nAssets:\n")
	for _, ticker := range tickers {
		b.WriteString("  " + p.assets[ticker].Summary() + "\n")
	}

	p.writeCoverage(&b, tickers)
	p.writeCorrelation(&b, tickers)

	return b.String()
}

// writeCoverage flags the effective common analysis window when asset
// histories do not fully overlap, and outright impossibility when no
// overlap exists.
func (p *Portfolio) writeCoverage(b *strings.Builder, tickers []string) {
	var commonStart, commonEnd time.Time
	var fullStart, fullEnd time.Time
	ranged := 0
	for _, ticker := range tickers {
		s := p.assets[ticker]
		start, ok := s.StartDate()
		if !ok {
			continue
		}
		end, _ := s.EndDate()
		if ranged == 0 {
			commonStart, commonEnd = start, end
			fullStart, fullEnd = start, end
		} else {
			if start.After(commonStart) {
				commonStart = start
			}
			if end.Before(commonEnd) {
				commonEnd = end
			}
			if start.Before(fullStart) {
				fullStart = start
			}
			if end.After(fullEnd) {
				fullEnd = end
			}
		}
		ranged++
	}

	b.WriteString("\nCoverage:\n")
	switch {
	case ranged == 0:
		b.WriteString("  warning: no asset has any observations\n")
	case commonStart.After(commonEnd):
		b.WriteString("  warning: asset histories do not overlap, joint analysis impossible\n")
	case fullStart.Before(commonStart) || fullEnd.After(commonEnd):
		b.WriteString(fmt.Sprintf("  histories only partially overlap; effective common window: %s to %s\n",
			commonStart.Format("2006-01-02"), commonEnd.Format("2006-01-02")))
	default:
		b.WriteString(fmt.Sprintf("  full overlap: %s to %s\n",
			commonStart.Format("2006-01-02"), commonEnd.Format("2006-01-02")))
	}
}

// writeCorrelation appends the correlation section. Internal failures are
// caught here and reported inline; the report boundary never propagates
// them.
func (p *Portfolio) writeCorrelation(b *strings.Builder, tickers []string) {
	var priced []string
	for _, ticker := range tickers {
		s := p.assets[ticker]
		if col, ok := s.Table().Column(model.ColClose); ok && len(col) > 0 {
			priced = append(priced, ticker)
		}
	}
	if len(priced) < 2 {
		return
	}

	section, err := p.correlationSection(priced)
	if err != nil {
		b.WriteString(fmt.Sprintf("\nCorrelation:\n  warning: correlation unavailable: %v\n", err))
		return
	}
	b.WriteString(section)
}

func (p *Portfolio) correlationSection(priced []string) (section string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("correlation step failed: %v", r)
		}
	}()

	_, joint, err := p.jointCloses(priced)
	if err != nil {
		return "", err
	}
	returns := jointLogReturns(joint)
	if len(returns) < 2 {
		return "", fmt.Errorf("not enough joint observations over the common range")
	}

	n := len(priced)
	m := len(returns)
	flat := make([]float64, m*n)
	for t, row := range returns {
		copy(flat[t*n:], row)
	}
	obs := mat.NewDense(m, n, flat)

	cols := make([][]float64, n)
	for i := 0; i < n; i++ {
		cols[i] = mat.Col(nil, i, obs)
	}

	var b strings.Builder
	b.WriteString("\nCorrelation of log-returns (common range):\n")
	b.WriteString("  " + fmt.Sprintf("%-10s", ""))
	for _, ticker := range priced {
		b.WriteString(fmt.Sprintf("%10s", ticker))
	}
	b.WriteString("\n")

	type pair struct {
		a, b string
		corr float64
	}
	var best, worst *pair
	for i := 0; i < n; i++ {
		b.WriteString(fmt.Sprintf("  %-10s", priced[i]))
		for j := 0; j < n; j++ {
			corr := stat.Correlation(cols[i], cols[j], nil)
			b.WriteString(fmt.Sprintf("%10.3f", corr))
			if i < j {
				pr := &pair{a: priced[i], b: priced[j], corr: corr}
				if best == nil || pr.corr > best.corr {
					best = pr
				}
				if worst == nil || pr.corr < worst.corr {
					worst = pr
				}
			}
		}
		b.WriteString("\n")
	}
	if best != nil {
		b.WriteString(fmt.Sprintf("  highest: %s / %s (%.3f)\n", best.a, best.b, best.corr))
		b.WriteString(fmt.Sprintf("  lowest:  %s / %s (%.3f)\n", worst.a, worst.b, worst.corr))
	}
	return b.String(), nil
}
