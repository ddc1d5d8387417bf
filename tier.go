package framegov

import (
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Tier detection thresholds. Logical core count and total memory are the two
// signals that correlate most reliably with whether cosmetic-only effects
// are affordable.
const (
	lowTierMaxCores  = 2
	lowTierMaxBytes  = 2 << 30 // 2 GiB
	highTierMinCores = 8
	highTierMinBytes = 8 << 30 // 8 GiB
)

// DetectDeviceTier classifies the host into a DeviceTier using logical CPU
// count and total memory. It is a convenience default for
// [WithTierProvider]; hosts with their own capability model should supply a
// provider instead.
//
// Detection errs toward the stronger tier: if either probe fails the result
// is TierHigh with the probe error, so a monitoring hiccup never silently
// degrades visuals.
func DetectDeviceTier() (DeviceTier, error) {
	cores, err := cpu.Counts(true)
	if err != nil {
		return TierHigh, err
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return TierHigh, err
	}

	switch {
	case cores <= lowTierMaxCores || vm.Total <= lowTierMaxBytes:
		return TierLow, nil
	case cores >= highTierMinCores && vm.Total >= highTierMinBytes:
		return TierHigh, nil
	default:
		return TierMedium, nil
	}
}
