package capacity

import "testing"

func TestCapacityString(t *testing.T) {
	tests := []struct {
		name string
		cap  Capacity
		want string
	}{
		{
			name: "fully known",
			cap:  Capacity{NumCores: intPtr(128), NumSockets: intPtr(2), MaxDevicesPerNode: 4},
			want: "cores=128 sockets=2 max_devices=4",
		},
		{
			name: "nothing known",
			cap:  Capacity{},
			want: "cores=? sockets=? max_devices=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cap.String(); got != tt.want {
				t.Errorf("String() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestHasFeature(t *testing.T) {
	part := Partition{Name: "gpu_a100", Features: []string{FeatureCPU, FeatureGPU}}
	if !part.HasFeature(FeatureGPU) {
		t.Error("HasFeature(gpu) = false; want true")
	}
	if part.HasFeature("fpga") {
		t.Error("HasFeature(fpga) = true; want false")
	}
}
