// Package serialization persists transform-domain weights so a filter bank
// is transformed once and reused across processes.
//
// A weights file is a single record:
//
//	Format Structure:
//	  [4 bytes: Magic "BWGW"]
//	  [Protobuf wire message]
//	    1: configuration name (string)
//	    2: kernel rows (varint)
//	    3: kernel cols (varint)
//	    4: output channels (varint)
//	    5: input channels (varint)
//	    6: coefficient count (varint)
//	    7: values (packed fixed32, IEEE-754 float32, little endian)
//	    8: SHA-256 checksum of field 7 (bytes)
//
// Values are stored densely, coefficient-major: coefficient e, input channel
// ic, output channel oc lives at (e*InputChannels+ic)*OutputChannels+oc,
// independent of the matrix stride of any particular workspace.
//
// Example usage:
//
//	rec := serialization.WeightsRecord{Configuration: "F(4x4,3x3)", ...}
//	if err := serialization.Write(w, &rec); err != nil {
//	    log.Fatal(err)
//	}
//	loaded, err := serialization.Read(r)
package serialization
