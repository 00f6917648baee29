package xpipeline_test

import (
	"context"
	"fmt"
	"os"

	"github.com/omeyang/xstage/pkg/staging/xpipeline"
)

func ExamplePipeline_Use() {
	base, err := os.MkdirTemp("", "xpipeline-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(base)

	cfg := xpipeline.DefaultConfig()
	cfg.Sandbox.BaseDir = base
	p, err := xpipeline.New(cfg)
	if err != nil {
		panic(err)
	}
	defer p.Close()

	ctx := context.Background()
	err = p.Use(ctx, xpipeline.Request{
		Credential: "example-key",
		Candidate:  "reports/q3.csv",
		Content:    []byte("region,total\nnorth,42\n"),
	}, func(_ context.Context, s *xpipeline.Staged) error {
		fmt.Println(s.Path.Rel(), s.Mode(), s.File.Size())
		return nil
	})
	fmt.Println(err)

	_, err = p.Stage(ctx, xpipeline.Request{Credential: "example-key", Candidate: "../../etc/passwd"})
	fmt.Println(xpipeline.KindOf(err))
	// Output:
	// reports/q3.csv memory 22
	// <nil>
	// traversal_attempt
}
