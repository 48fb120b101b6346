// Package profile describes the execution profile the worker runs
// under: the device class of the inference backend and the parallelism
// available for batch-level concurrency.
package profile

import "runtime"

// DeviceClass distinguishes the constrained CPU path from accelerated
// (CUDA/MPS) backends. The class drives batch sizing, decode parameters
// and whether batches may run concurrently.
type DeviceClass string

const (
	Constrained DeviceClass = "cpu"
	Accelerated DeviceClass = "gpu"
)

// Profile is decided once at startup and shared read-only.
type Profile struct {
	Class       DeviceClass
	Parallelism int
}

// New builds a profile for the given class using the machine's CPU
// count. parallelism <= 0 means detect.
func New(class DeviceClass, parallelism int) Profile {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	return Profile{Class: class, Parallelism: parallelism}
}

// FromDevice maps a backend-reported device string ("cpu", "cuda",
// "mps") to a device class. Anything that is not plain CPU counts as
// accelerated.
func FromDevice(device string) DeviceClass {
	if device == "" || device == string(Constrained) {
		return Constrained
	}
	return Accelerated
}
