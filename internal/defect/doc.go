// Package defect defines the domain model for track defect events: the
// incoming detection payload from the vision system and the closed severity
// taxonomy that every downstream decision depends on.
package defect
