package jobfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/morphogen/pkg/seed"
	"github.com/chazu/morphogen/pkg/sim"
)

func TestParseFullJob(t *testing.T) {
	src := `
[[job]]
name = "coral-block"
resolution = 60
iterations = 200
feed_rate = 0.0545
kill_rate = 0.062
diffusion_a = 0.2
diffusion_b = 0.1
time_step = 1.0
threshold = 0.4
preview = true

[job.seed]
pattern = "scattered"
count = 12
rng_seed = 7

[job.bounds]
min = [0.0, 0.0, 0.0]
max = [2.0, 2.0, 2.0]
`
	jobs, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}

	job := jobs[0]
	if job.Name != "coral-block" {
		t.Errorf("name = %q, want coral-block", job.Name)
	}
	cfg := job.Config
	if cfg.Resolution != 60 || cfg.Iterations != 200 {
		t.Errorf("resolution/iterations = %d/%d, want 60/200", cfg.Resolution, cfg.Iterations)
	}
	if cfg.FeedRate != 0.0545 || cfg.KillRate != 0.062 {
		t.Errorf("rates = %v/%v, want 0.0545/0.062", cfg.FeedRate, cfg.KillRate)
	}
	if cfg.Threshold != 0.4 || !cfg.Preview {
		t.Errorf("threshold/preview = %v/%v, want 0.4/true", cfg.Threshold, cfg.Preview)
	}
	if cfg.Seed.Kind != seed.KindScattered || cfg.Seed.Count != 12 || cfg.Seed.RNGSeed != 7 {
		t.Errorf("seed = %+v, want scattered count 12 rng 7", cfg.Seed)
	}
	if job.Bounds.Max.X != 2 || job.Bounds.Max.Y != 2 || job.Bounds.Max.Z != 2 {
		t.Errorf("bounds max = %v, want (2, 2, 2)", job.Bounds.Max)
	}
}

func TestParseDefaults(t *testing.T) {
	jobs, err := Parse([]byte("[[job]]\nname = \"plain\"\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}

	want := sim.Default()
	cfg := jobs[0].Config
	if cfg.Resolution != want.Resolution || cfg.Iterations != want.Iterations {
		t.Errorf("resolution/iterations = %d/%d, want defaults %d/%d",
			cfg.Resolution, cfg.Iterations, want.Resolution, want.Iterations)
	}
	if cfg.FeedRate != want.FeedRate || cfg.KillRate != want.KillRate {
		t.Errorf("rates = %v/%v, want defaults %v/%v",
			cfg.FeedRate, cfg.KillRate, want.FeedRate, want.KillRate)
	}
	if cfg.Seed.Kind != seed.KindPoint {
		t.Errorf("seed kind = %v, want point", cfg.Seed.Kind)
	}
	b := jobs[0].Bounds
	if b.Min.X != 0 || b.Max.X != 1 || b.Max.Y != 1 || b.Max.Z != 1 {
		t.Errorf("bounds = %v, want unit cube", b)
	}
}

func TestParseExplicitZeroFeed(t *testing.T) {
	// feed_rate = 0 is a valid decay regime and must not be confused with
	// an omitted key.
	jobs, err := Parse([]byte("[[job]]\nname = \"decay\"\nfeed_rate = 0.0\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if jobs[0].Config.FeedRate != 0 {
		t.Errorf("feed rate = %v, want explicit 0", jobs[0].Config.FeedRate)
	}
}

func TestParseMultipleJobs(t *testing.T) {
	src := `
[[job]]
name = "first"

[[job]]
name = "second"
iterations = 20

[job.seed]
pattern = "slab"
axis = "x"
thickness = 2
`
	jobs, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name != "first" || jobs[1].Name != "second" {
		t.Errorf("job order = %q, %q; want declaration order", jobs[0].Name, jobs[1].Name)
	}
	s := jobs[1].Config.Seed
	if s.Kind != seed.KindSlab || s.Axis != seed.AxisX || s.Thickness != 2 {
		t.Errorf("second seed = %+v, want x slab thickness 2", s)
	}
}

func TestParsePatternAliases(t *testing.T) {
	cases := map[string]seed.Pattern{
		"mitosis": seed.Point(),
		"coral":   seed.Slab(seed.AxisX, 2),
		"neural":  seed.Scattered(seed.DefaultScatterCount, 0),
	}
	for alias, want := range cases {
		src := "[[job]]\nname = \"x\"\n[job.seed]\npattern = \"" + alias + "\"\n"
		jobs, err := Parse([]byte(src))
		if err != nil {
			t.Errorf("%s: Parse failed: %v", alias, err)
			continue
		}
		if got := jobs[0].Config.Seed; got != want {
			t.Errorf("%s: seed = %+v, want %+v", alias, got, want)
		}
	}

	// A bare slab pattern is a z slab two cells thick.
	src0 := "[[job]]\nname = \"x\"\n[job.seed]\npattern = \"slab\"\n"
	jobs0, err := Parse([]byte(src0))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got, want := jobs0[0].Config.Seed, seed.Slab(seed.AxisZ, 2); got != want {
		t.Errorf("bare slab seed = %+v, want %+v", got, want)
	}

	// Alias defaults stay overridable.
	src := "[[job]]\nname = \"x\"\n[job.seed]\npattern = \"coral\"\naxis = \"y\"\nthickness = 3\n"
	jobs, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got, want := jobs[0].Config.Seed, seed.Slab(seed.AxisY, 3); got != want {
		t.Errorf("overridden coral seed = %+v, want %+v", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"no jobs":        ``,
		"missing name":   "[[job]]\nresolution = 40\n",
		"bad toml":       "[[job]\nname = \"x\"\n",
		"bad resolution": "[[job]]\nname = \"x\"\nresolution = 1\n",
		"bad threshold":  "[[job]]\nname = \"x\"\nthreshold = 1.5\n",
		"bad pattern":    "[[job]]\nname = \"x\"\n[job.seed]\npattern = \"lace\"\n",
		"bad axis":       "[[job]]\nname = \"x\"\n[job.seed]\npattern = \"slab\"\naxis = \"w\"\n",
		"flat bounds":    "[[job]]\nname = \"x\"\n[job.bounds]\nmin = [0.0, 0.0, 0.0]\nmax = [1.0, 1.0, 0.0]\n",
	}
	for name, src := range cases {
		if _, err := Parse([]byte(src)); err == nil {
			t.Errorf("%s: Parse succeeded, want error", name)
		}
	}
}

func TestParseUnstableConfig(t *testing.T) {
	_, err := Parse([]byte("[[job]]\nname = \"x\"\ntime_step = 10.0\n"))
	if !errors.Is(err, sim.ErrUnstable) {
		t.Fatalf("err = %v, want ErrUnstable", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.toml")
	if err := os.WriteFile(path, []byte("[[job]]\nname = \"disk\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	jobs, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Name != "disk" {
		t.Fatalf("Load returned %d jobs, want 1 named disk", len(jobs))
	}

	_, err = Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("Load of missing file succeeded")
	}
	if !strings.Contains(err.Error(), "jobfile") {
		t.Errorf("error %q lacks jobfile prefix", err)
	}
}
