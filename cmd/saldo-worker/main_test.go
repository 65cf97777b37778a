package main

import "testing"

func TestIsDuplicate(t *testing.T) {
	tests := []struct {
		name string
		last deliveryKey
		next deliveryKey
		want bool
	}{
		{
			name: "exact redelivery is dropped",
			last: deliveryKey{tag: "100-0", days: 3},
			next: deliveryKey{tag: "100-0", days: 3},
			want: true,
		},
		{
			name: "same tag on a later offset is delivered",
			last: deliveryKey{tag: "100-0", days: 3},
			next: deliveryKey{tag: "100-0", days: 1},
			want: false,
		},
		{
			name: "different tag is delivered",
			last: deliveryKey{tag: "100-0", days: 3},
			next: deliveryKey{tag: "200-0", days: 3},
			want: false,
		},
		{
			name: "empty tag is never suppressed",
			last: deliveryKey{tag: "", days: 3},
			next: deliveryKey{tag: "", days: 3},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicate(tt.last, tt.next); got != tt.want {
				t.Fatalf("isDuplicate(%+v, %+v) = %v, want %v", tt.last, tt.next, got, tt.want)
			}
		})
	}
}
