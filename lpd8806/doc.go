// Package lpd8806 encodes colors into the serial stream understood by strips
// driven by the LPD8806 chipset.
//
// Each LED takes three bytes in green, red, blue order. The top bit of every
// pixel byte is always set and the remaining 7 bits carry the channel
// intensity, so a byte with the top bit cleared only ever appears in the
// framing. A full strip update is a 4 byte zero start frame, the pixel bytes
// and a 4 byte zero latch frame:
//
//	[00 00 00 00] [G R B] [G R B] ... [00 00 00 00]
//
// Encoder owns both the logical color surface and the transmission buffer.
// The surface is written by a single producer without locking; the
// transmission buffer is guarded and must be read through Snapshot,
// SnapshotInto or WriteTo.
//
// Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/lpd8806+english.pdf
package lpd8806
