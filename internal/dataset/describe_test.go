package dataset

import (
	"math"
	"strings"
	"testing"
)

func TestDescribe_NumericAndCategorical(t *testing.T) {
	ds := mustLoad(t, studentsCSV)
	sum := ds.Describe(DefaultDescribeOptions())
	if sum.Rows != 8 || len(sum.Cols) != len(ds.Columns()) {
		t.Fatalf("shape: rows=%d cols=%d", sum.Rows, len(sum.Cols))
	}
	age, ok := sum.Column("age")
	if !ok || age.Kind != "numeric" {
		t.Fatalf("age: %+v", age)
	}
	if age.Min != 19 || age.Max != 24 || age.NonNull != 8 || age.Missing != 0 {
		t.Fatalf("age stats: %+v", age)
	}
	if math.Abs(age.Mean-21.5) > 1e-9 {
		t.Fatalf("age mean: %v", age.Mean)
	}
	job, ok := sum.Column(ColPartTimeJob)
	if !ok || job.Kind != "categorical" {
		t.Fatalf("part_time_job: %+v", job)
	}
	if job.Unique != 2 || job.TopValues[0].Value != "No" || job.TopValues[0].Count != 6 {
		t.Fatalf("top values: %+v", job.TopValues)
	}
	if sum.Corr != nil {
		t.Fatalf("correlations should be off by default")
	}
}

func TestDescribe_CorrelationsAndMarkdown(t *testing.T) {
	ds := mustLoad(t, studentsCSV)
	opt := DefaultDescribeOptions()
	opt.Correlations = true
	sum := ds.Describe(opt)
	if sum.Corr == nil {
		t.Fatalf("expected correlation matrix")
	}
	n := len(sum.Corr.Columns)
	if n != len(ds.NumericColumns()) {
		t.Fatalf("corr columns: %v", sum.Corr.Columns)
	}
	for i := 0; i < n; i++ {
		if sum.Corr.Values[i][i] != 1 {
			t.Fatalf("diagonal %d = %v", i, sum.Corr.Values[i][i])
		}
		for j := 0; j < n; j++ {
			if sum.Corr.Values[i][j] != sum.Corr.Values[j][i] {
				t.Fatalf("matrix not symmetric at %d,%d", i, j)
			}
		}
	}
	md := sum.Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 8", "- age: numeric", "- part_time_job: categorical", "[CORRELATIONS]"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestDescribe_MissingCounts(t *testing.T) {
	csv := "social_media_hours,netflix_hours,study_hours_per_day,exam_score,part_time_job\n" +
		"1,1,,70,Yes\n" +
		"1,1,2,80,\n" +
		"1,1,3,90,No\n"
	sum := mustLoad(t, csv).Describe(DefaultDescribeOptions())
	study, _ := sum.Column(ColStudyHours)
	if study.Missing != 1 || study.NonNull != 2 {
		t.Fatalf("study missing: %+v", study)
	}
	job, _ := sum.Column(ColPartTimeJob)
	if job.Missing != 1 || job.NonNull != 2 {
		t.Fatalf("job missing: %+v", job)
	}
}
