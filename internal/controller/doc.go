// Package controller wires the archive components together and drives
// discover and archive runs end to end.
package controller
