package scenario

import "github.com/Amir23156/BottleAsec/internal/config"

// HostsFromConfig converts the configured topology.
func HostsFromConfig(cfg config.TopologyConfig) []Host {
	hosts := make([]Host, 0, len(cfg.Hosts))
	for _, h := range cfg.Hosts {
		hosts = append(hosts, Host{
			Name:       h.Name,
			Address:    h.Address,
			Network:    h.Network,
			Role:       h.Role,
			Interfaces: append([]string(nil), h.Interfaces...),
			Services:   append([]string(nil), h.Services...),
		})
	}
	return hosts
}
