package bq40z50

import (
	"fmt"

	"bqmba/internal/mba"
)

func detected(i uint8, label, desc string) mba.Bit {
	return mba.Bit{Index: i, Label: label, Description: desc, Active: "Detected", Inactive: "Not Detected"}
}

func active(i uint8, label, desc string) mba.Bit {
	return mba.Bit{Index: i, Label: label, Description: desc, Active: "Active", Inactive: "Inactive"}
}

func enabled(i uint8, label, desc string) mba.Bit {
	return mba.Bit{Index: i, Label: label, Description: desc, Active: "Enabled", Inactive: "Disabled"}
}

func reserved(i uint8) mba.Bit {
	return mba.Bit{Index: i, Label: "RSVD", Description: "Reserved"}
}

var safetyAlert = &mba.Schema{
	Name:  "SafetyAlert",
	Width: 32,
	Bits: []mba.Bit{
		detected(0, "CUV", "Cell Undervoltage"),
		detected(1, "COV", "Cell Overvoltage"),
		detected(2, "OCC1", "Overcurrent During Charge 1"),
		detected(3, "OCC2", "Overcurrent During Charge 2"),
		detected(4, "OCD1", "Overcurrent During Discharge 1"),
		detected(5, "OCD2", "Overcurrent During Discharge 2"),
		reserved(6),
		detected(7, "AOLDL", "Overload During Discharge Latch"),

		reserved(8),
		detected(9, "ASCCL", "Short-Circuit During Charge Latch"),
		reserved(10),
		detected(11, "ASCDL", "Short-Circuit During Discharge Latch"),
		detected(12, "OTC", "Overtemperature During Charge"),
		detected(13, "OTD", "Overtemperature During Discharge"),
		detected(14, "CUVC", "Cell Undervoltage Compensated"),
		reserved(15),

		detected(16, "OTF", "Overtemperature FET"),
		reserved(17),
		detected(18, "PTO", "Precharge Timeout"),
		detected(19, "PTOS", "Precharge Timeout Suspend"),
		detected(20, "CTO", "Charge Timeout"),
		detected(21, "CTOS", "Charge Timeout Suspend"),
		detected(22, "OC", "Overcharge"),
		detected(23, "CHGC", "Overcharging Current"),

		detected(24, "CHGV", "Overcharging Voltage"),
		detected(25, "PCHGC", "Over-Precharge Current"),
		detected(26, "UTC", "Undertemperature During Charge"),
		detected(27, "UTD", "Undertemperature During Discharge"),
		detected(28, "COVL", "Cell Overvoltage Latch"),
		detected(29, "OCDL", "Overcurrent in Discharge"),
		reserved(30),
		reserved(31),
	},
}

var safetyStatus = &mba.Schema{
	Name:  "SafetyStatus",
	Width: 32,
	Bits: []mba.Bit{
		detected(0, "CUV", "Cell Undervoltage"),
		detected(1, "COV", "Cell Overvoltage"),
		detected(2, "OCC1", "Overcurrent During Charge 1"),
		detected(3, "OCC2", "Overcurrent During Charge 2"),
		detected(4, "OCD1", "Overcurrent During Discharge 1"),
		detected(5, "OCD2", "Overcurrent During Discharge 2"),
		detected(6, "AOLD", "Overload During Discharge"),
		detected(7, "AOLDL", "Overload During Discharge Latch"),

		detected(8, "ASCC", "Short-circuit During Charge"),
		detected(9, "ASCCL", "Short-circuit During Charge Latch"),
		detected(10, "ASCD", "Short-circuit During Discharge"),
		detected(11, "ASCDL", "Short-circuit During Discharge Latch"),
		detected(12, "OTC", "Overtemperature During Charge"),
		detected(13, "OTD", "Overtemperature During Discharge"),
		detected(14, "CUVC", "Cell Undervoltage Compensated"),
		reserved(15),

		detected(16, "OTF", "Overtemperature FET"),
		reserved(17),
		detected(18, "PTO", "Precharge Timeout"),
		reserved(19),
		detected(20, "CTO", "Charge Timeout"),
		reserved(21),
		detected(22, "OC", "Overcharge"),
		detected(23, "CHGC", "Overcharging Current"),

		detected(24, "CHGV", "Overcharging Voltage"),
		detected(25, "PCHGC", "Over-Precharge Current"),
		detected(26, "UTC", "Undertemperature During Charge"),
		detected(27, "UTD", "Undertemperature During Discharge"),
		detected(28, "COVL", "Cell Overvoltage Latch"),
		detected(29, "OCDL", "Overcurrent in Discharge"),
		reserved(30),
		reserved(31),
	},
}

// pfCommon covers bits 0-22, shared by PFAlert and PFStatus.
func pfCommon() []mba.Bit {
	return []mba.Bit{
		detected(0, "SUV", "Safety Cell Undervoltage Failure"),
		detected(1, "SOV", "Safety Cell Overvoltage Failure"),
		detected(2, "SOCC", "Safety Overcurrent in Charge"),
		detected(3, "SOCD", "Safety Overcurrent in Discharge"),
		detected(4, "SOT", "Safety Overtemperature Cell Failure"),
		detected(5, "COVL", "Cell Overvoltage Latch"),
		detected(6, "SOTF", "Safety Overtemperature FET Failure"),
		detected(7, "QIM", "QMax Imbalance Failure"),

		detected(8, "CB", "Cell Balancing Failure"),
		detected(9, "IMP", "Impedance Failure"),
		detected(10, "CD", "Capacity Degradation Failure"),
		detected(11, "VIMR", "Voltage Imbalance At Rest"),
		detected(12, "VIMA", "Voltage Imbalance While Active"),
		detected(13, "AOLDL", "Overload in Discharge"),
		detected(14, "ASCCL", "Short Circuit in Charge"),
		detected(15, "ASCDL", "Short Circuit in Discharge"),

		detected(16, "CFETF", "Charge FET Failure"),
		detected(17, "DFETF", "Discharge FET Failure"),
		detected(18, "OCDL", "Overcurrent in Discharge"),
		detected(19, "FUSE", "Chemical Fuse Failure"),
		detected(20, "AFER", "AFE Register Failure"),
		detected(21, "AFEC", "AFE Communication Failure"),
		detected(22, "2LVL", "Second Level Protector Failure"),
	}
}

func thermistors() []mba.Bit {
	return []mba.Bit{
		detected(28, "TS1", "Open Thermistor TS1 Failure"),
		detected(29, "TS2", "Open Thermistor TS2 Failure"),
		detected(30, "TS3", "Open Thermistor TS3 Failure"),
		detected(31, "TS4", "Open Thermistor TS4 Failure"),
	}
}

var pfAlert = &mba.Schema{
	Name:  "PFAlert",
	Width: 32,
	Bits: concat(
		pfCommon(),
		[]mba.Bit{reserved(23), reserved(24), reserved(25), reserved(26), reserved(27)},
		thermistors(),
	),
}

var pfStatus = &mba.Schema{
	Name:  "PFStatus",
	Width: 32,
	Bits: concat(
		pfCommon(),
		[]mba.Bit{
			detected(23, "PTC", "PTC Failure"),
			detected(24, "IFC", "Instruction Flash Checksum Failure"),
			reserved(25),
			detected(26, "DFW", "Data Flash Wearout Failure"),
			reserved(27),
		},
		thermistors(),
	),
}

const secModeDesc = "Security Mode Bit %d (00-Reserved 01-FullAccess 10-Unsealed 11-Sealed)"

var operationStatus = &mba.Schema{
	Name:  "OperationStatus",
	Width: 32,
	Bits: []mba.Bit{
		active(0, "PRES", "System Present (low)"),
		active(1, "DSG", "Discharge FET status"),
		active(2, "CHG", "Charge FET status"),
		active(3, "PCHG", "Precharge FET status"),
		reserved(4),
		active(5, "FUSE", "Fuse status"),
		reserved(6),
		active(7, "BTP_INT", "Battery Trip Point Interrupt"),

		{Index: 8, Label: "SEC0", Description: fmt.Sprintf(secModeDesc, 0)},
		{Index: 9, Label: "SEC1", Description: fmt.Sprintf(secModeDesc, 1)},
		active(10, "SDV", "Shutdown due to low pack voltage"),
		active(11, "SS", "Safety Status (OR of all safety bits)"),
		active(12, "PF", "Permanent Failure mode"),
		active(13, "XDSG", "Discharging disabled"),
		active(14, "XCHG", "Charging disabled"),
		active(15, "SLEEP", "Sleep mode conditions met"),

		active(16, "SDM", "Shutdown via command"),
		{Index: 17, Label: "LED", Description: "LED Display status", Active: "On", Inactive: "Off"},
		active(18, "AUTH", "Authentication in progress"),
		active(19, "CALM", "Auto CC Offset Calibration (MAC)"),
		{Index: 20, Label: "CAL", Description: "Calibration output (ADC/CC)", Active: "Available", Inactive: "Not available"},
		{Index: 21, Label: "CAL_OFFSET", Description: "Calibration Output (Shorted CC)", Active: "Available", Inactive: "Not available"},
		active(22, "XL", "400-kHz SMBus mode"),
		active(23, "SLEEPM", "SLEEP mode via command"),

		active(24, "INIT", "Initialization after full reset"),
		{Index: 25, Label: "SMBLCAL", Description: "Auto CC Calibration (bus low)", Active: "Started", Inactive: "Not started"},
		active(26, "SLPAD", "ADC Measurement in Sleep"),
		active(27, "SLPCC", "CC Measurement in Sleep"),
		active(28, "CB", "Cell Balancing status"),
		active(29, "EMSHUT", "Emergency FET Shutdown"),
		reserved(30),
		reserved(31),
	},
	Summary: securitySummary,
}

var manufacturingStatus = &mba.Schema{
	Name:  "ManufacturingStatus",
	Width: 16,
	Bits: []mba.Bit{
		{Index: 0, Label: "PCHG", Description: "Precharge FET Test.", Active: "Active", Inactive: "Disabled"},
		{Index: 1, Label: "CHG", Description: "Charge FET Test.", Active: "Active", Inactive: "Disabled"},
		{Index: 2, Label: "DSG", Description: "Discharge FET Test.", Active: "Active", Inactive: "Disabled"},
		enabled(3, "GAUGE", "Gas Gauging."),
		enabled(4, "FET", "All FET Action."),
		enabled(5, "LF", "Lifetime data collection."),
		enabled(6, "PF", "Permanent Failure functionality."),
		enabled(7, "BBR", "Black box recorder."),

		enabled(8, "FUSE", "FUSE action."),
		{Index: 9, Label: "LED", Description: "LED Display.", Active: "On", Inactive: "Off"},
		enabled(10, "RSVD", "Reserved"),
		enabled(11, "RSVD", "Reserved"),
		enabled(12, "RSVD", "Reserved"),
		enabled(13, "RSVD", "Reserved"),
		enabled(14, "LT_TS", "Lifetime Speed Up mode."),
		enabled(15, "CALTS", "CAL ADC or CC output on ManufacturerData()."),
	},
}

func concat(parts ...[]mba.Bit) []mba.Bit {
	var out []mba.Bit
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
