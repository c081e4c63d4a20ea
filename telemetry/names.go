package telemetry

import (
	"fmt"
	"sort"
)

// Hexapod leg segments from body to foot.
var legSegments = []string{"coxa", "femur", "tibia"}

// HexapodJointNames returns leg_{1..6}_{coxa,femur,tibia}.
func HexapodJointNames() []string {
	names := make([]string, 0, 6*len(legSegments))
	for leg := 1; leg <= 6; leg++ {
		for _, seg := range legSegments {
			names = append(names, fmt.Sprintf("leg_%d_%s", leg, seg))
		}
	}
	return names
}

// StandingPose is the hexapod's neutral stance in degrees: coxa 0, femur 45, tibia -45.
func StandingPose() map[string]float64 {
	pose := make(map[string]float64, 18)
	for leg := 1; leg <= 6; leg++ {
		pose[fmt.Sprintf("leg_%d_coxa", leg)] = 0
		pose[fmt.Sprintf("leg_%d_femur", leg)] = 45
		pose[fmt.Sprintf("leg_%d_tibia", leg)] = -45
	}
	return pose
}

func sortStrings(s []string) []string {
	sort.Strings(s)
	return s
}
