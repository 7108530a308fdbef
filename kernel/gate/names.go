package gate

// exceptionNames holds the report label of each CPU exception vector.
// Vectors 19-31 are reserved by the architecture.
var exceptionNames = [...]string{
	0:  "Division By Zero",
	1:  "Debug",
	2:  "Non Maskable Interrupt",
	3:  "Breakpoint",
	4:  "Into Detected Overflow",
	5:  "Out of Bounds",
	6:  "Invalid Opcode",
	7:  "No Coprocessor",
	8:  "Double Fault",
	9:  "Coprocessor Segment Overrun",
	10: "Bad TSS",
	11: "Segment Not Present",
	12: "Stack Fault",
	13: "General Protection Fault",
	14: "Page Fault",
	15: "Unknown Interrupt",
	16: "Coprocessor Fault",
	17: "Alignment Check",
	18: "Machine Check",
}

// ExceptionName returns the label for exception vector n. Reserved exception
// vectors return "Reserved"; vectors outside the exception range return
// "Unknown".
func ExceptionName(n InterruptNumber) string {
	if int(n) < len(exceptionNames) {
		return exceptionNames[n]
	}

	if n < ExceptionCount {
		return "Reserved"
	}

	return "Unknown"
}
