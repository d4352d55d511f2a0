// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/luxfi/surety/cmd/suretysim/run"
)

func main() {
	if err := run.Command().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "suretysim failed: %v\n", err)
		os.Exit(1)
	}
}
