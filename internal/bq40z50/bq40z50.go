// Package bq40z50 holds the ManufacturerBlockAccess command table of the
// bq40z50-R2 gas gauge.
package bq40z50

import (
	"bqmba/internal/mba"
	"bqmba/internal/render"
)

// Addr is the default Smart Battery address.
const Addr = 0x0B

var unsealSequence = []string{"UnsealKey1", "UnsealKey2"}

// UnsealSequence names the commands that move the gauge from SEALED to
// UNSEALED. Both key words must arrive within 4 s.
func UnsealSequence() []string {
	return append([]string(nil), unsealSequence...)
}

// Commands returns the command table. Each call returns a fresh copy.
func Commands() mba.Catalog {
	return commands.Clone()
}

var commands = mba.Catalog{
	{Code: 0x0001, Name: "DeviceType", Access: mba.AccessRead, Format: render.FormatHex,
		Description: "Identifies the battery device type to verify model and family compatibility."},
	{Code: 0x0002, Name: "FirmwareVersion", Access: mba.AccessRead, Format: render.FormatHex,
		Description: "Reports the firmware version running on the battery controller, useful for compatibility and updates."},
	{Code: 0x0003, Name: "HardwareVersion", Access: mba.AccessRead, Format: render.FormatHex,
		Description: "Indicates the hardware revision of the device to identify physical variations or improvements."},
	{Code: 0x0024, Name: "PermanentFailure", Access: mba.AccessWrite, Format: render.FormatHex,
		Description: "Enables/disables Permanent Failure to help streamline production testing."},
	{Code: 0x0028, Name: "LifetimeDataReset", Access: mba.AccessWrite, Format: render.FormatHex,
		Description: "Resets accumulated lifetime data such as cycle count and usage statistics."},
	{Code: 0x0029, Name: "PermanentFailureDataReset", Access: mba.AccessWrite, Format: render.FormatHex,
		Description: "Resets permanent failure data flags to clear fault status."},
	{Code: 0x002A, Name: "BlackBoxRecorderReset", Access: mba.AccessWrite, Format: render.FormatHex,
		Description: "Resets the black box event recorder to clear logged fault history."},
	{Code: 0x0030, Name: "SealDevice", Access: mba.AccessWrite, Format: render.FormatHex,
		Description: "Seals the device to prevent further modifications to configuration or data."},
	{Code: 0x0041, Name: "DeviceReset", Access: mba.AccessWrite, Format: render.FormatHex,
		Description: "Resets the device, reinitializing all registers and states."},
	{Code: 0x0050, Name: "SafetyAlert", Access: mba.AccessRead, Format: render.FormatBinary, Bits: safetyAlert,
		Description: "Current safety alert flags such as overvoltage or overtemperature."},
	{Code: 0x0051, Name: "SafetyStatus", Access: mba.AccessRead, Format: render.FormatBinary, Bits: safetyStatus,
		Description: "Current safety status, showing ongoing safety-related events."},
	{Code: 0x0052, Name: "PFAlert", Access: mba.AccessRead, Format: render.FormatBinary, Bits: pfAlert,
		Description: "Permanent failure alerts that require immediate attention or servicing."},
	{Code: 0x0053, Name: "PFStatus", Access: mba.AccessRead, Format: render.FormatBinary, Bits: pfStatus,
		Description: "Permanent failure flags for battery health monitoring."},
	{Code: 0x0054, Name: "OperationStatus", Access: mba.AccessRead, Format: render.FormatBinary, Bits: operationStatus,
		Description: "Current operating mode and condition of the device."},
	{Code: 0x0057, Name: "ManufacturingStatus", Access: mba.AccessRead, Format: render.FormatBinary, Bits: manufacturingStatus,
		Description: "Activated manufacturing modes (PF, FET test, gauging...)."},
	{Code: 0x7EE0, Name: "UnsealKey1", Access: mba.AccessWrite, Format: render.FormatHex,
		Description: "First unseal key word (SEALED to UNSEALED 1/2). Both words must be sent within 4 s."},
	{Code: 0xCCDF, Name: "UnsealKey2", Access: mba.AccessWrite, Format: render.FormatHex,
		Description: "Second unseal key word (SEALED to UNSEALED 2/2). Both words must be sent within 4 s."},
	{Code: 0x4062, Name: "PF2RegisterRead", Access: mba.AccessRead, Format: render.FormatHex,
		Description: "Vendor register holding the PF2 flag on DJI packs."},
	// Payload as written by the DJI recovery tool.
	{Code: 0x4062, Name: "ClearPF2", Payload: []byte{0x01, 0x23, 0x45, 0x67}, Access: mba.AccessWrite, Format: render.FormatHex,
		Description: "Overwrites the vendor PF2 register on DJI packs."},
}
