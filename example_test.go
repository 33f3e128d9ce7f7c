package fingerprint_test

import (
	"context"
	"fmt"
	"time"

	"github.com/slashdevops/fingerprint"
	"github.com/slashdevops/fingerprint/host/static"
)

// ExampleNew demonstrates the simplest way to compute an identifier.
func ExampleNew() {
	collector := fingerprint.New(static.MustNew(static.Desktop()))

	id, err := collector.ID(context.Background())
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("ID length: %d\n", len(id))
	fmt.Printf("Is hex: %v\n", isAllHex(id))
	// Output:
	// ID length: 8
	// Is hex: true
}

// ExampleCollector_WithSalt shows how a salt produces application-specific IDs.
func ExampleCollector_WithSalt() {
	ctx := context.Background()
	host := static.MustNew(static.Desktop())

	id1, _ := fingerprint.New(host).WithSalt("app-one").ID(ctx)
	id2, _ := fingerprint.New(host).WithSalt("app-two").ID(ctx)

	fmt.Printf("Same length: %v\n", len(id1) == len(id2))
	fmt.Printf("Different IDs: %v\n", id1 != id2)
	// Output:
	// Same length: true
	// Different IDs: true
}

// ExampleCollector_Validate shows how to check a stored ID against the current device.
func ExampleCollector_Validate() {
	collector := fingerprint.New(static.MustNew(static.Desktop()))

	id, _ := collector.ID(context.Background())

	// Validate the correct ID
	valid, _ := collector.Validate(context.Background(), id)
	fmt.Printf("Correct ID valid: %v\n", valid)

	// Validate an incorrect ID
	valid, _ = collector.Validate(context.Background(), "00000000")
	fmt.Printf("Wrong ID valid: %v\n", valid)

	// Output:
	// Correct ID valid: true
	// Wrong ID valid: false
}

// ExampleCollector_Diagnostics inspects a session in which one probe stalls.
func ExampleCollector_Diagnostics() {
	profile := static.Desktop()
	profile.Faults = map[string]static.Fault{"OpenAudio": {Stall: true}}

	collector := fingerprint.New(static.MustNew(profile)).
		WithProbeTimeout(20 * time.Millisecond)

	rec, err := collector.Collect(context.Background())
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	diag := collector.Diagnostics()
	fmt.Printf("Timed out: %v\n", diag.TimedOut)
	fmt.Printf("Audio slot: %s\n", rec.Get(fingerprint.KeyAudio).Err)
	fmt.Printf("Has ID: %v\n", rec.Identifier() != "")
	// Output:
	// Timed out: [audio]
	// Audio slot: timeout
	// Has ID: true
}

// ExampleCollector_WithoutProbes skips the slow probes.
func ExampleCollector_WithoutProbes() {
	collector := fingerprint.New(static.MustNew(static.Desktop())).
		WithoutProbes(fingerprint.ProbeFonts, fingerprint.ProbeAudio)

	rec, err := collector.Collect(context.Background())
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Println(rec.Get(fingerprint.KeyFonts).Status)
	fmt.Println(collector.Diagnostics().Skipped)
	// Output:
	// unavailable
	// [fonts audio]
}

func isAllHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return len(s) > 0
}
