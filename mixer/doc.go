// Package mixer sums audio tracks into one stereo buffer, up to the engine's
// slot count (four or eight in the standard layouts).
//
// Each active track runs through a [ChannelStrip] (dynamics, EQ, echo,
// mono upmix), is scaled by its fader and pan law, and is added into an
// accumulator as long as the longest connected track. The [MasterBus]
// then colors, compresses, equalizes, widens and balances the sum and
// applies the master fader with a hard clamp to [-1, 1].
//
// If any track is soloed only soloed tracks play. Otherwise every unmuted
// connected track plays. Tracks must share one sample rate; the mixer
// does not resample.
//
// Errors carry one of three sentinels: [ErrConfiguration] for unusable
// parameters, [ErrBufferMismatch] for buffers that cannot be mixed and
// [ErrCompute] for a failing stage.
package mixer
