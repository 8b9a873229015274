package catalog

// DefaultKinds is the bundled relationship-kind vocabulary used when the host
// supplies none of its own.
func DefaultKinds() []RelationshipKind {
	return []RelationshipKind{
		{ID: "routes_to", DisplayName: "Routes To"},
		{ID: "peers_with", DisplayName: "Peers With"},
		{ID: "attached_to", DisplayName: "Attached To"},
		{ID: "reads_from", DisplayName: "Reads From"},
		{ID: "depends_on", DisplayName: "Depends On"},
	}
}

// DefaultTypes is the bundled resource-type vocabulary: enough of a cloud
// landing zone to design with before the portal catalog arrives.
func DefaultTypes() []ResourceType {
	return []ResourceType{
		{
			ID:          "core/vcn",
			DisplayName: "Virtual Cloud Network",
			Icon:        "vcn",
			Properties: []PropertySchema{
				{Name: "cidr_block", Default: "10.0.0.0/16"},
				{Name: "dns_label"},
			},
			AllowedKinds: []string{"routes_to", "peers_with", "attached_to"},
		},
		{
			ID:          "core/subnet",
			DisplayName: "Subnet",
			Icon:        "subnet",
			Properties: []PropertySchema{
				{Name: "cidr_block", Default: "10.0.1.0/24"},
				{Name: "prohibit_public_ip", Default: true},
			},
			AllowedKinds: []string{"routes_to", "attached_to"},
		},
		{
			ID:          "core/internet-gateway",
			DisplayName: "Internet Gateway",
			Icon:        "igw",
			AllowedKinds: []string{
				"routes_to", "attached_to",
			},
		},
		{
			ID:          "core/nat-gateway",
			DisplayName: "NAT Gateway",
			Icon:        "natgw",
			AllowedKinds: []string{
				"routes_to", "attached_to",
			},
		},
		{
			ID:          "compute/instance",
			DisplayName: "Compute Instance",
			Icon:        "instance",
			Properties: []PropertySchema{
				{Name: "shape", Default: "VM.Standard.E4.Flex"},
				{Name: "ocpus", Default: float64(1)},
				{Name: "memory_gb", Default: float64(16)},
			},
		},
		{
			ID:          "network/load-balancer",
			DisplayName: "Load Balancer",
			Icon:        "lb",
			Properties: []PropertySchema{
				{Name: "bandwidth_mbps", Default: float64(100)},
			},
			AllowedKinds: []string{"routes_to", "attached_to"},
		},
		{
			ID:          "database/db-system",
			DisplayName: "Database System",
			Icon:        "database",
			Properties: []PropertySchema{
				{Name: "edition", Default: "standard"},
				{Name: "storage_gb", Default: float64(256)},
			},
			AllowedKinds: []string{"reads_from", "attached_to", "depends_on"},
		},
		{
			ID:          "storage/bucket",
			DisplayName: "Object Storage Bucket",
			Icon:        "bucket",
			Properties: []PropertySchema{
				{Name: "versioning", Default: false},
			},
			AllowedKinds: []string{"reads_from", "attached_to"},
		},
	}
}
