package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"cstar/internal/config"
	"cstar/internal/version"
)

// Digest identifies one check: the AST document together with every
// setting that can change its diagnostics.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether the digest was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// ComputeDigest hashes H(schema || version || settings || document).
func ComputeDigest(data []byte, check config.CheckConfig) Digest {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint16(buf[:2], summarySchemaVersion)
	_, _ = h.Write(buf[:2])
	_, _ = h.Write([]byte(version.Version))
	_, _ = h.Write([]byte{0})
	flag := byte(0)
	if check.ZeroInit {
		flag = 1
	}
	_, _ = h.Write([]byte{flag})
	for _, n := range []int{check.MaxDiagnostics, check.MaxInstantiationDepth} {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(n)))
		_, _ = h.Write(buf[:])
	}
	_, _ = h.Write(data)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
