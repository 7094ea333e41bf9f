// Command linefollow steers a line-following robot: it watches the floor
// through a camera, finds the dark line in a band of rows below the frame
// centre, and streams the line's offset to a motor controller over serial.
//
// Usage:
//
//	linefollow run [--config file] [--port /dev/ttyACM0] [--display] [--telemetry]
//	linefollow detect frame.png ...
//	linefollow geometry
//	linefollow monitor ws://robot:8090
//	linefollow status http://robot:8090
package main

func main() {
	Execute()
}
