// Package viz draws linkages in the terminal.
//
//   - [Canvas]: braille pixel canvas, 2x4 dots per character cell
//   - [Scene]: a linkage plus its trajectory, drawn as bars and loci
//   - [LiveModel]: Bubble Tea animation with live constraint tuning
//   - [Recorder]: GIF capture of canvas frames
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restore the original constraints
//	Tab   - Select the next constraint
//	Up/Dn - Scale the selected constraint by 5%
//	[ ]   - Step one tick while paused
//	W     - Cycle the joint shown in the plot
//	G     - Toggle GIF recording
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
