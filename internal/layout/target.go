package layout

// Target describes the C ABI the emitted code is compiled for.
type Target struct {
	Triple   string // e.g. "x86_64-linux-gnu"
	PtrSize  int    // bytes
	PtrAlign int    // bytes
	// TagSize is the size of the enum tag of a dispatch union.
	TagSize int
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:   "x86_64-linux-gnu",
		PtrSize:  8,
		PtrAlign: 8,
		TagSize:  4,
	}
}

func I686LinuxGNU() Target {
	return Target{
		Triple:   "i686-linux-gnu",
		PtrSize:  4,
		PtrAlign: 4,
		TagSize:  4,
	}
}

// TargetByTriple returns the known target named triple.
func TargetByTriple(triple string) (Target, bool) {
	for _, t := range []Target{X86_64LinuxGNU(), I686LinuxGNU()} {
		if t.Triple == triple {
			return t, true
		}
	}
	return Target{}, false
}
