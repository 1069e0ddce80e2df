package consts

const (
	WorkingNetlist   = "simulate.sp" // Rendered netlist handed to the simulator
	DataExt          = ".data"       // Simulator output table
	SnapshotExt      = ".snap"       // Database snapshot
	DefaultSimulator = "ngspice"     // Batch simulator binary
	BatchFlag        = "-b"          // Batch mode flag
	DefaultPlotFile  = "plot"        // Plot file name without extension
	StderrTailLines  = 20            // Simulator stderr lines kept in errors
)
