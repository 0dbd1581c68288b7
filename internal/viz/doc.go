// Package viz renders arbitration runs in the terminal.
//
//   - [PlotTorque], [SelectionStrip]: static asciigraph plots of a stored run
//   - [Model]: Bubble Tea live view stepping a scenario in real time
//   - Theme selection with controller color palettes
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart the scenario
//	T     - Cycle color themes
//	+/-   - Change playback speed
//	?     - Show help overlay
//	Q     - Quit
package viz
