package avsource

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackState_String(t *testing.T) {
	assert.Equal(t, "live", TrackStateLive.String())
	assert.Equal(t, "ended", TrackStateEnded.String())
	assert.Equal(t, "unknown", TrackState(9).String())
}

func TestTrackFactory_UniqueIDs(t *testing.T) {
	f := NewTrackFactory()
	video := NewVideoSource(false, nil)
	audio := NewAudioSource()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		vt, err := f.CreateVideoTrack(video)
		require.NoError(t, err)
		at, err := f.CreateAudioTrack(audio)
		require.NoError(t, err)

		for _, id := range []string{vt.ID(), at.ID()} {
			_, err := uuid.Parse(id)
			require.NoError(t, err)
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	}
	assert.Equal(t, 100, video.AttachedTracks())
	assert.Equal(t, 100, audio.AttachedTracks())
}

func TestTrackFactory_KindMatchesSource(t *testing.T) {
	f := NewTrackFactory()
	vt, err := f.CreateVideoTrack(NewVideoSource(false, nil))
	require.NoError(t, err)
	at, err := f.CreateAudioTrack(NewAudioSource())
	require.NoError(t, err)

	assert.Equal(t, RTPCodecTypeVideo, vt.Kind())
	assert.Equal(t, vt.Source().Kind(), vt.Kind())
	assert.Equal(t, webrtc.MimeTypeVP8, vt.Codec().MimeType)

	assert.Equal(t, RTPCodecTypeAudio, at.Kind())
	assert.Equal(t, at.Source().Kind(), at.Kind())
	assert.Equal(t, webrtc.MimeTypeOpus, at.Codec().MimeType)
}

func TestTrackFactory_IDGeneratorFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	f := NewTrackFactory(WithIDGenerator(func() (uuid.UUID, error) { return uuid.Nil, boom }))
	src := NewVideoSource(false, nil)

	_, err := f.CreateVideoTrack(src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTrackID))
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 0, src.AttachedTracks())

	_, err = f.CreateAudioTrack(NewAudioSource())
	assert.True(t, errors.Is(err, ErrTrackID))
}

func TestTrackFactory_Options(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	h264 := webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeH264, ClockRate: 90000}
	f := NewTrackFactory(WithStreamID("room"), WithVideoCodec(h264), WithFactoryMetrics(m))

	vt, err := f.CreateVideoTrack(NewVideoSource(false, nil))
	require.NoError(t, err)
	assert.Equal(t, "room", vt.StreamID())
	assert.Equal(t, webrtc.MimeTypeH264, vt.Codec().MimeType)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TracksCreated.WithLabelValues("video")))
}

func TestTrack_StateFollowsSource(t *testing.T) {
	f := NewTrackFactory()
	src := NewAudioSource()
	t1, err := f.CreateAudioTrack(src)
	require.NoError(t, err)
	t2, err := f.CreateAudioTrack(src)
	require.NoError(t, err)

	assert.Equal(t, TrackStateLive, t1.State())
	src.End()
	assert.Equal(t, TrackStateEnded, t1.State())
	assert.Equal(t, TrackStateEnded, t2.State())
}

func TestTrack_StopReleasesOnce(t *testing.T) {
	f := NewTrackFactory()
	src := NewVideoSource(false, nil)
	t1, err := f.CreateVideoTrack(src)
	require.NoError(t, err)
	t2, err := f.CreateVideoTrack(src)
	require.NoError(t, err)
	require.NoError(t, src.Close())

	ended := make(chan struct{})
	t1.OnEnded(func() { close(ended) })
	t1.Stop()
	t1.Stop()
	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("OnEnded not called")
	}

	assert.Equal(t, TrackStateEnded, t1.State())
	assert.Equal(t, TrackStateLive, t2.State())
	assert.Equal(t, SourceStateLive, src.State())

	require.NoError(t, t2.Close())
	assert.Equal(t, SourceStateEnded, src.State())
}

func TestVideoTrack_Frame(t *testing.T) {
	f := NewTrackFactory()
	src := NewVideoSource(true, boolPtr(false))
	vt, err := f.CreateVideoTrack(src)
	require.NoError(t, err)

	assert.Nil(t, vt.Frame())
	frame := frameAt(10)
	require.NoError(t, src.PushFrame(frame))
	assert.Same(t, frame, vt.Frame())

	vt.SetEnabled(false)
	assert.Nil(t, vt.Frame())
	vt.SetEnabled(true)

	settings := vt.Settings()
	assert.True(t, settings.IsScreencast)
	require.NotNil(t, settings.NeedsDenoising)
	assert.False(t, *settings.NeedsDenoising)

	vt.Stop()
	assert.Nil(t, vt.Frame())
}

func TestAudioTrack_ReadChunk(t *testing.T) {
	f := NewTrackFactory()
	src := NewAudioSource()
	at, err := f.CreateAudioTrack(src)
	require.NoError(t, err)

	require.NoError(t, src.PushData(chunkWith(3)))
	c, ok := at.ReadChunk()
	require.True(t, ok)
	assert.Equal(t, int16(3), c.Samples[0])

	require.NoError(t, src.PushData(chunkWith(4)))
	at.SetEnabled(false)
	_, ok = at.ReadChunk()
	assert.False(t, ok)
	assert.Equal(t, 1, src.Len(), "disabled track leaves the chunk queued")
	at.SetEnabled(true)
	c, ok = at.ReadChunk()
	require.True(t, ok)
	assert.Equal(t, int16(4), c.Samples[0])

	require.NoError(t, src.PushData(chunkWith(5)))
	at.Stop()
	_, ok = at.ReadChunk()
	assert.False(t, ok)
}

func TestTrack_Clone(t *testing.T) {
	f := NewTrackFactory()
	src := NewVideoSource(false, nil)
	vt, err := f.CreateVideoTrack(src)
	require.NoError(t, err)

	clone, err := vt.Clone()
	require.NoError(t, err)
	assert.NotEqual(t, vt.ID(), clone.ID())
	assert.Equal(t, vt.Source(), clone.Source())
	assert.Equal(t, 2, src.AttachedTracks())
}

func TestTrack_WriteRTPWithoutBindings(t *testing.T) {
	f := NewTrackFactory()
	vt, err := f.CreateVideoTrack(NewVideoSource(false, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, vt.Bindings())

	pkt := &rtp.Packet{Header: rtp.Header{Version: 2, PayloadType: 96, SequenceNumber: 1}, Payload: []byte{1, 2, 3}}
	assert.NoError(t, vt.WriteRTP(pkt))

	raw, err := pkt.Marshal()
	require.NoError(t, err)
	n, err := vt.Write(raw)
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)

	_, err = vt.Write([]byte{0x80})
	assert.Error(t, err)
}

func TestTrack_AddToPeerConnection(t *testing.T) {
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	require.NoError(t, err)
	defer pc.Close()

	src, err := NewAudioVideoSource(SourceInit{}, NewTrackFactory())
	require.NoError(t, err)
	vt, err := src.CreateVideoTrack()
	require.NoError(t, err)
	at, err := src.CreateAudioTrack()
	require.NoError(t, err)

	_, err = pc.AddTrack(vt)
	require.NoError(t, err)
	_, err = pc.AddTrack(at)
	require.NoError(t, err)

	offer, err := pc.CreateOffer(nil)
	require.NoError(t, err)
	assert.Contains(t, offer.SDP, "m=video")
	assert.Contains(t, offer.SDP, "m=audio")
	assert.Contains(t, offer.SDP, vt.ID())
}
