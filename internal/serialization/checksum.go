package serialization

import "crypto/sha256"

// ComputeChecksum computes SHA-256 checksum of data.
func ComputeChecksum(data []byte) [ChecksumSize]byte {
	return sha256.Sum256(data)
}

// ValidateChecksum compares computed checksum against stored checksum.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed [ChecksumSize]byte, stored []byte) error {
	if len(stored) != ChecksumSize || string(computed[:]) != string(stored) {
		return ErrChecksumMismatch
	}
	return nil
}
