package sonic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ADFResult holds an augmented Dickey-Fuller unit-root test outcome for the
// constant-only regression.
type ADFResult struct {
	Statistic  float64
	PValue     float64
	Lags       int
	NObs       int
	Critical1  float64
	Critical5  float64
	Critical10 float64
}

// ADFTest runs the augmented Dickey-Fuller test with an intercept and the
// Schwert lag order floor(12*(n/100)^(1/4)). The null hypothesis is a unit
// root; a strongly negative statistic rejects it. Critical values use the
// MacKinnon (2010) finite-sample response surface and the p-value is
// interpolated from the asymptotic distribution of the tau statistic.
func ADFTest(xs []float64) (*ADFResult, error) {
	n := len(xs)
	lags := int(12.0 * math.Pow(float64(n)/100.0, 0.25))
	maxLags := (n - 3) / 2
	if lags > maxLags {
		lags = maxLags
	}
	if lags < 0 {
		lags = 0
	}

	k := lags + 2 // intercept, level term, lagged differences
	nobs := n - lags - 1
	if nobs <= k+1 {
		return nil, fmt.Errorf("adf: %d samples insufficient for %d lags", n, lags)
	}

	dy := make([]float64, n-1)
	for i := 1; i < n; i++ {
		dy[i-1] = xs[i] - xs[i-1]
	}

	// Row t regresses dy[t] on y[t-1], dy[t-1..t-lags] and a constant.
	X := mat.NewDense(nobs, k, nil)
	y := mat.NewVecDense(nobs, nil)
	for row := 0; row < nobs; row++ {
		t := row + lags + 1 // index into xs
		y.SetVec(row, dy[t-1])
		X.Set(row, 0, xs[t-1])
		for j := 1; j <= lags; j++ {
			X.Set(row, j, dy[t-1-j])
		}
		X.Set(row, k-1, 1.0)
	}

	var qr mat.QR
	qr.Factorize(X)
	beta := mat.NewVecDense(k, nil)
	if err := qr.SolveVecTo(beta, false, y); err != nil {
		return nil, fmt.Errorf("adf: regression is singular: %w", err)
	}

	// Residual variance and the covariance of the level coefficient.
	fitted := mat.NewVecDense(nobs, nil)
	fitted.MulVec(X, beta)
	rss := 0.0
	for i := 0; i < nobs; i++ {
		r := y.AtVec(i) - fitted.AtVec(i)
		rss += r * r
	}
	sigma2 := rss / float64(nobs-k)

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("adf: X'X not invertible: %w", err)
	}
	se := math.Sqrt(sigma2 * xtxInv.At(0, 0))
	if se == 0 || math.IsNaN(se) {
		return nil, fmt.Errorf("adf: zero standard error for level coefficient")
	}

	stat := beta.AtVec(0) / se
	res := &ADFResult{
		Statistic: stat,
		PValue:    adfPValue(stat),
		Lags:      lags,
		NObs:      nobs,
	}
	res.Critical1, res.Critical5, res.Critical10 = adfCriticalValues(nobs)
	return res, nil
}

// adfCriticalValues returns the MacKinnon (2010) finite-sample critical
// values for the constant-only case at 1%, 5% and 10%.
func adfCriticalValues(nobs int) (c1, c5, c10 float64) {
	t := float64(nobs)
	c1 = -3.43035 - 6.5393/t - 16.786/(t*t) - 79.433/(t*t*t)
	c5 = -2.86154 - 2.8903/t - 4.234/(t*t) - 40.040/(t*t*t)
	c10 = -2.56677 - 1.5384/t - 2.809/(t*t)
	return c1, c5, c10
}

// adfTauQuantiles samples the asymptotic distribution of the constant-case
// tau statistic; pairs are (tau, cumulative probability).
var adfTauQuantiles = [][2]float64{
	{-3.96, 0.001},
	{-3.43, 0.01},
	{-3.12, 0.025},
	{-2.86, 0.05},
	{-2.57, 0.10},
	{-2.19, 0.25},
	{-1.57, 0.50},
	{-0.94, 0.75},
	{-0.44, 0.90},
	{-0.07, 0.95},
	{0.23, 0.975},
	{0.60, 0.99},
}

// adfPValue linearly interpolates the tau quantile table.
func adfPValue(stat float64) float64 {
	qs := adfTauQuantiles
	if stat <= qs[0][0] {
		return 0.0
	}
	if stat >= qs[len(qs)-1][0] {
		return 1.0
	}
	for i := 1; i < len(qs); i++ {
		if stat <= qs[i][0] {
			t0, p0 := qs[i-1][0], qs[i-1][1]
			t1, p1 := qs[i][0], qs[i][1]
			return p0 + (p1-p0)*(stat-t0)/(t1-t0)
		}
	}
	return 1.0
}
