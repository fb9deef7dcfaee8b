// Package media is the boundary to the external media service. The
// engine hands out connection bootstrap data; audio never flows through
// this process.
package media

import "github.com/pion/webrtc/v4"

var defaultStunServers = []string{"stun:stun.l.google.com:19302"}

// ICEConfig builds the WebRTC bootstrap handed to clients entering voice.
func ICEConfig(stunServers []string) webrtc.Configuration {
	if len(stunServers) == 0 {
		stunServers = defaultStunServers
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: stunServers},
		},
	}
}
