package stats

import "testing"

func TestParseCorrelationMethod(t *testing.T) {
	cases := []struct {
		in      string
		want    CorrelationMethod
		wantErr bool
	}{
		{"pearson", CorrelationPearson, false},
		{"spearman", CorrelationSpearman, false},
		{"kendall", CorrelationKendall, false},
		{"biweight", CorrelationBiweight, false},
		{"", CorrelationPearson, false},
		{"covariance", "", true},
	}
	for _, tc := range cases {
		got, err := ParseCorrelationMethod(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseCorrelationMethod(%q) should fail", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseCorrelationMethod(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestParseNaNPolicy(t *testing.T) {
	if got, err := ParseNaNPolicy(""); err != nil || got != NaNRemove {
		t.Errorf("Empty policy should default to remove, got %v, %v", got, err)
	}
	if _, err := ParseNaNPolicy("interpolate"); err == nil {
		t.Error("Unknown policy should fail")
	}
}

func TestValidate_Defaults(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Fatalf("Defaults must validate: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AnalysisOptions)
	}{
		{"confidence at 1", func(o *AnalysisOptions) { o.ConfidenceLevel = 1 }},
		{"zero bootstrap", func(o *AnalysisOptions) { o.BootstrapSamples = 0 }},
		{"zero permutations", func(o *AnalysisOptions) { o.PermutationCount = 0 }},
		{"bad method", func(o *AnalysisOptions) { o.CorrelationMethod = "covariance" }},
		{"bad policy", func(o *AnalysisOptions) { o.NaNPolicy = "interpolate" }},
		{"negative zscore threshold", func(o *AnalysisOptions) { o.ZScoreThreshold = -1 }},
		{"contamination too high", func(o *AnalysisOptions) { o.IsoForestContamined = 0.5 }},
		{"negative lag", func(o *AnalysisOptions) { o.MaxLag = -1 }},
		{"negative uncertainty", func(o *AnalysisOptions) {
			o.Uncertainty = &UncertaintySpec{Values: []float64{-0.1}}
		}},
		{"uncertainty confidence above 1", func(o *AnalysisOptions) {
			o.Uncertainty = &UncertaintySpec{Values: []float64{0.1}, ConfidenceLevels: []float64{1.5}}
		}},
		{"unknown kind", func(o *AnalysisOptions) { o.Enabled = []AnalysisKind{"forecast"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.mutate(&opts)
			if err := opts.Validate(); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}

func TestWants(t *testing.T) {
	opts := DefaultOptions()
	if !opts.Wants(KindDescriptive) || !opts.Wants(KindPower) {
		t.Error("Empty Enabled should mean everything is wanted")
	}

	opts.Enabled = []AnalysisKind{KindDescriptive, KindOutliers}
	if !opts.Wants(KindOutliers) {
		t.Error("Listed kind should be wanted")
	}
	if opts.Wants(KindCorrelation) {
		t.Error("Unlisted kind should not be wanted")
	}
}
