package main

import (
	"flag"
	"image/color"
	"log"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"statml/pkg/loader"
	"statml/pkg/model"
	"statml/pkg/rng"
)

// generateLinearData creates n samples with d features in [-5, 5] and
// y = b + w·x plus uniform noise.
func generateLinearData(g *rng.LCG, n, d int) (X [][]float64, y, trueW []float64, trueB float64) {
	trueW = make([]float64, d)
	for j := range trueW {
		trueW[j] = g.Float64()*4 - 2
	}
	trueB = g.Float64()*2 - 1
	X = make([][]float64, n)
	y = make([]float64, n)
	for i := range X {
		X[i] = make([]float64, d)
		y[i] = trueB
		for j := range X[i] {
			X[i][j] = g.Float64()*10 - 5
			y[i] += trueW[j] * X[i][j]
		}
		y[i] += g.Float64() - 0.5
	}
	return X, y, trueW, trueB
}

// generateClusterData scatters n points in d dimensions around k random
// centres.
func generateClusterData(g *rng.LCG, n, k, d int) [][]float64 {
	centers := make([][]float64, k)
	for c := range centers {
		centers[c] = make([]float64, d)
		for j := range centers[c] {
			centers[c][j] = g.Float64()*20 - 10
		}
	}
	X := make([][]float64, n)
	for i := range X {
		c := g.Intn(k)
		X[i] = make([]float64, d)
		for j := range X[i] {
			X[i][j] = centers[c][j] + 2*(g.Float64()-0.5)
		}
	}
	return X
}

var palette = []color.RGBA{
	{R: 230, G: 60, B: 60, A: 255},
	{R: 60, G: 170, B: 60, A: 255},
	{R: 60, G: 90, B: 230, A: 255},
	{R: 220, G: 160, B: 30, A: 255},
	{R: 150, G: 60, B: 200, A: 255},
}

// plotLinearRegression draws the first feature against y together with the
// fitted line holding the other features at zero.
func plotLinearRegression(X [][]float64, y []float64, w []float64, filename string) error {
	p := plot.New()
	p.Title.Text = "Linear regression on the first feature"
	p.X.Label.Text = "x1"
	p.Y.Label.Text = "y"

	pts := make(plotter.XYs, len(X))
	for i := range X {
		pts[i].X, pts[i].Y = X[i][0], y[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.Color = color.RGBA{R: 50, G: 50, B: 255, A: 255}
	p.Add(s)

	l, err := plotter.NewLine(plotter.XYs{{X: -5, Y: w[0] - 5*w[1]}, {X: 5, Y: w[0] + 5*w[1]}})
	if err != nil {
		return err
	}
	l.Color = color.RGBA{R: 255, A: 255}
	l.LineStyle.Width = vg.Points(3)
	p.Add(l)
	return p.Save(4*vg.Inch, 4*vg.Inch, filename)
}

// plotClusters draws 2-D points coloured by label with the centroids as
// crosses.
func plotClusters(title string, pts [][]float64, labels []int, centroids [][]float64, filename string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "component 1"
	p.Y.Label.Text = "component 2"

	var groups []plotter.XYs
	for i, l := range labels {
		for len(groups) <= l {
			groups = append(groups, nil)
		}
		groups[l] = append(groups[l], plotter.XY{X: pts[i][0], Y: pts[i][1]})
	}
	for l, g := range groups {
		if len(g) == 0 {
			continue
		}
		s, err := plotter.NewScatter(g)
		if err != nil {
			return err
		}
		s.Color = palette[l%len(palette)]
		p.Add(s)
	}
	if len(centroids) > 0 {
		cpts := make(plotter.XYs, len(centroids))
		for i, c := range centroids {
			cpts[i] = plotter.XY{X: c[0], Y: c[1]}
		}
		c, err := plotter.NewScatter(cpts)
		if err != nil {
			return err
		}
		c.Color = color.RGBA{A: 255}
		c.Shape = draw.CrossGlyph{}
		c.Radius = vg.Points(5)
		p.Add(c)
	}
	return p.Save(4*vg.Inch, 4*vg.Inch, filename)
}

func main() {
	out := flag.String("out", ".", "directory for the PNG plots")
	k := flag.Int("k", 3, "number of clusters")
	seed := flag.Int64("seed", loader.DefaultSeed, "seed for the generated data and k-means")
	verbose := flag.Bool("v", false, "development logging (debug level)")
	flag.Parse()

	cfg := zap.NewProductionConfig()
	if *verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	g := rng.New(*seed)

	// Supervised: gradient descent against the normal equations.
	X, y, trueW, trueB := generateLinearData(g, 500, 3)
	gd, err := model.TrainLinearRegression(X, y, model.LinearRegressionOptions{Logger: logger})
	if err != nil {
		logger.Fatal("linear regression", zap.Error(err))
	}
	normal, err := model.TrainLinearRegression(X, y, model.LinearRegressionOptions{Solver: model.SolverNormal, Logger: logger})
	if err != nil {
		logger.Fatal("linear regression", zap.Error(err))
	}
	logger.Info("linear regression",
		zap.Float64("true_bias", trueB), zap.Float64s("true_weights", trueW),
		zap.Float64s("gd_weights", gd.Weights), zap.Float64("gd_r2", gd.R2),
		zap.Float64s("normal_weights", normal.Weights), zap.Float64("normal_r2", normal.R2))
	file := filepath.Join(*out, "linear_regression.png")
	if err := plotLinearRegression(X, y, normal.Weights, file); err != nil {
		logger.Fatal("plot", zap.Error(err))
	}
	logger.Info("saved plot", zap.String("file", file))

	// Unsupervised: k-means in four dimensions, viewed through PCA.
	Xc := generateClusterData(g, 300, *k, 4)
	km, err := model.TrainKMeans(Xc, model.KMeansOptions{K: *k, Seed: *seed, Logger: logger})
	if err != nil {
		logger.Fatal("kmeans", zap.Error(err))
	}
	logger.Info("kmeans",
		zap.Int("iterations", km.Iterations), zap.Bool("converged", km.Converged),
		zap.Float64s("inertia_history", km.InertiaHistory))

	pca, err := model.FitPCA(Xc, model.PCAOptions{NComponents: 2, Seed: *seed, Logger: logger})
	if err != nil {
		logger.Fatal("pca", zap.Error(err))
	}
	logger.Info("pca", zap.Float64s("explained_variance_ratio", pca.ExplainedVarianceRatio))
	Z, err := pca.Transform(Xc)
	if err != nil {
		logger.Fatal("pca transform", zap.Error(err))
	}
	centroids, err := pca.Transform(km.Centroids)
	if err != nil {
		logger.Fatal("pca transform", zap.Error(err))
	}
	file = filepath.Join(*out, "kmeans_pca.png")
	if err := plotClusters("k-means clusters in PCA space", Z, km.Labels, centroids, file); err != nil {
		logger.Fatal("plot", zap.Error(err))
	}
	logger.Info("saved plot", zap.String("file", file))
}
