// SPDX-License-Identifier: Unlicense OR MIT

// Command mandelctl renders a fractal view to a PNG file without a
// display, driving the same Orchestrator a browser-delivered session
// would use, for scripted and headless exports.
package main

func main() {
	Execute()
}
