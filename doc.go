// Package avsource lets host code push externally produced media into
// WebRTC-style sources and mint tracks backed by them.
//
// Key pieces include:
//   - AudioVideoSource: one ingestion surface over a VideoSource and an
//     AudioSource (onFrame/onData, createVideoTrack/createAudioTrack)
//   - VideoSource: latest-frame-only I420 source with screencast and
//     denoising hints and strictly increasing timestamps
//   - AudioSource: bounded PCM delivery queue, drop-oldest on overflow
//   - TrackFactory, VideoTrack, AudioTrack, MediaStream
//   - Bindings and the Parse* helpers for hosts that speak dictionaries
//   - VideoPattern/AudioPattern/Feeder synthetic producers
//
// # Architecture
//
//	Host: dict -> Parse* -> AudioVideoSource.OnFrame/OnData
//	Video: OnFrame -> stamp (us) -> VideoSource (atomic swap) -> VideoTrack.Frame
//	Audio: OnData -> stamp (us) -> AudioSource (bounded FIFO) -> AudioTrack.ReadChunk
//	RTP:   external encoder -> Track.WriteRTP -> bound webrtc.PeerConnection senders
//
// Tracks implement webrtc.TrackLocal and can be passed to
// PeerConnection.AddTrack. Encoding and packetization are left to the caller.
//
// # Errors
//
// Pushes into an ended source fail with *RejectedFrameError or
// *RejectedChunkError wrapping ErrSourceEnded. Video frames whose timestamp is
// not after the last accepted frame fail with ErrNonMonotonicTimestamp. A full
// audio queue is not an error: the oldest chunk is dropped and counted.
//
// The package does not log.
package avsource
