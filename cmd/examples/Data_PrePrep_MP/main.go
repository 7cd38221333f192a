package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"statml/pkg/hypothesis"
	"statml/pkg/model"
	"statml/pkg/stats"
	"statml/pkg/table"
)

var employees = [][]string{
	{"34", "engineering", "72000", "5", "1"},
	{"28", "sales", "48000", "2", "0"},
	{"NA", "engineering", "81000", "8", "1"},
	{"45", "support", "39000", "", "0"},
	{"39", "sales", "", "11", "1"},
	{"23", "support", "31000", "1", "0"},
	{"51", "engineering", "99000", "20", "1"},
	{"31", "sales", "52000", "4", "0"},
	{"27", "support", "NaN", "3", "0"},
	{"42", "engineering", "88000", "15", "1"},
	{"36", "sales", "61000", "9", "1"},
	{"29", "support", "35000", "NA", "0"},
}

var columns = []string{"age", "department", "salary", "tenure", "promoted"}

func main() {
	threshold := flag.Float64("missing-thresh", 0.2, "drop columns with a larger fraction of missing cells")
	strategy := flag.String("impute", table.ImputeMedian, "imputation for numeric columns: mean, median, mode")
	encode := flag.String("encode", "onehot", "encoding for department: label, onehot, freq")
	verbose := flag.Bool("v", false, "development logging (debug level)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if *verbose {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	tb, err := table.New(columns, employees)
	if err != nil {
		logger.Fatal("table", zap.Error(err))
	}
	tb, dropped, err := tb.DropSparse(*threshold)
	if err != nil {
		logger.Fatal("drop sparse columns", zap.Error(err))
	}
	logger.Info("loaded", zap.Int("rows", tb.NRows), zap.Int("cols", tb.NCols), zap.Strings("dropped", dropped))

	var features [][]float64
	var names []string
	for _, c := range tb.Columns {
		if c == "promoted" {
			continue
		}
		numeric, err := tb.Numeric(c)
		if err != nil {
			logger.Fatal("column", zap.String("column", c), zap.Error(err))
		}
		if !numeric {
			block, labels := encodeColumn(logger, tb, c, *encode)
			features = appendBlock(features, block)
			names = append(names, labels...)
			continue
		}
		ratio, _ := tb.MissingRatio(c)
		if ratio > 0 {
			tb, err = tb.Impute(c, *strategy, "")
			if err != nil {
				logger.Fatal("impute", zap.String("column", c), zap.Error(err))
			}
			logger.Info("imputed", zap.String("column", c), zap.String("strategy", *strategy), zap.Float64("missing_ratio", ratio))
		}
		col, err := tb.Floats(c)
		if err != nil {
			logger.Fatal("column", zap.String("column", c), zap.Error(err))
		}
		summary := stats.Describe(col)
		logger.Info("describe", zap.String("column", c),
			zap.Float64("mean", summary.Mean), zap.Float64("std", summary.Std),
			zap.Float64("median", summary.Median), zap.Float64("skewness", summary.Skewness))
		if out, err := stats.DetectOutliersIQR(col, 1.5); err == nil && len(out.Indices) > 0 {
			logger.Warn("outliers", zap.String("column", c), zap.Ints("rows", out.Indices), zap.Float64s("values", out.Values))
		}
		block := make([][]float64, len(col))
		for i, v := range col {
			block[i] = []float64{v}
		}
		features = appendBlock(features, block)
		names = append(names, c)
	}

	if binned, err := tb.Bin("age", 3); err == nil {
		bins, _ := binned.Raw("age_bin")
		logger.Info("age bins", zap.Strings("bins", bins))
	}
	if poly, err := tb.Polynomial("age", "tenure"); err == nil {
		logger.Debug("polynomial terms", zap.Strings("columns", poly.Columns[tb.NCols:]))
	}

	y, err := tb.Floats("promoted")
	if err != nil {
		logger.Fatal("label", zap.Error(err))
	}
	salary, err := tb.Floats("salary")
	if err == nil {
		var yes, no []float64
		for i, v := range salary {
			if y[i] == 1 {
				yes = append(yes, v)
			} else {
				no = append(no, v)
			}
		}
		if t, err := hypothesis.TTestIndependent(yes, no, hypothesis.WithWelch()); err == nil {
			logger.Info("salary by promotion", zap.String("test", t.Name), zap.Float64("t", t.Statistic), zap.Float64("p", t.PValue))
		}
	}

	scaler, err := model.FitStandardScaler(features)
	if err != nil {
		logger.Fatal("scale", zap.Error(err))
	}
	scaled, err := scaler.Transform(features)
	if err != nil {
		logger.Fatal("scale", zap.Error(err))
	}
	logger.Info("feature matrix", zap.Strings("features", names), zap.Int("rows", len(scaled.Data)))
	for i := 0; i < 3 && i < len(scaled.Data); i++ {
		logger.Info("row", zap.Int("index", i), zap.Float64s("scaled", scaled.Data[i]), zap.Float64("promoted", y[i]))
	}
}

func encodeColumn(logger *zap.Logger, tb *table.Table, name, method string) ([][]float64, []string) {
	switch method {
	case "label":
		codes, cats, err := tb.Labels(name)
		if err != nil {
			logger.Fatal("label encode", zap.Error(err))
		}
		logger.Info("label encoded", zap.String("column", name), zap.Strings("categories", cats))
		block := make([][]float64, len(codes))
		for i, v := range codes {
			block[i] = []float64{v}
		}
		return block, []string{name}
	case "freq":
		freq, err := tb.Frequency(name)
		if err != nil {
			logger.Fatal("frequency encode", zap.Error(err))
		}
		block := make([][]float64, len(freq))
		for i, v := range freq {
			block[i] = []float64{v}
		}
		return block, []string{name + "_freq"}
	}
	block, cats, err := tb.OneHot(name)
	if err != nil {
		logger.Fatal("one-hot encode", zap.Error(err))
	}
	labels := make([]string, len(cats))
	for k, c := range cats {
		labels[k] = name + "_" + c
	}
	return block, labels
}

func appendBlock(X, block [][]float64) [][]float64 {
	if X == nil {
		X = make([][]float64, len(block))
	}
	for i, r := range block {
		X[i] = append(X[i], r...)
	}
	return X
}
