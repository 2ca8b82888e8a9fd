package examdef

import (
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Load builds the CUE instance in dir and compiles it into an Exam.
// The directory's .cue files form one instance; all compilation errors are
// returned together.
func Load(dir string) (*Exam, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{fmt.Errorf("exam definitions directory not found: %s", dir)}
	}
	if err != nil {
		return nil, []error{fmt.Errorf("stat %s: %w", dir, err)}
	}
	if !info.IsDir() {
		return nil, []error{fmt.Errorf("not a directory: %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{fmt.Errorf("no CUE files found in %s", dir)}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{fmt.Errorf("load %s: %w", dir, inst.Err)}
	}

	v := ctx.BuildInstance(inst)
	if v.Err() != nil {
		return nil, []error{fmt.Errorf("build %s: %w", dir, v.Err())}
	}

	return Compile(v)
}
