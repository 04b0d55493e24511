// Package pointer tracks a pointer position and a smoothed follower that
// trails it.
//
// A Tracker subscribes to a Surface for pointer signals, clamps every
// observed position into a bounded box, and on each animation frame moves
// the follower a fixed fraction of the remaining distance toward the
// target. Frames are requested from a Scheduler, one pending request at a
// time, and every Frame is handed to the OnFrame callback for rendering.
//
// Active only controls whether the follower should be drawn. The frame
// loop runs regardless, so a tracker that never sees a pointer drifts its
// follower toward the origin.
package pointer
