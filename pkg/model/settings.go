// Copyright © 2018 One Concern

package model

const maxUpdatesSeed = 2048

// Settings of a host.
//
// Every field is optional, so that any subset of the settings may be requested or updated.
type Settings struct {
	Hostname       *SingleLineString             `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	Timezone       *SingleLineString             `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Motd           *SingleLineString             `json:"motd,omitempty" yaml:"motd,omitempty"`
	Updates        *UpdatesSettings              `json:"updates,omitempty" yaml:"updates,omitempty"`
	NTP            *NTPSettings                  `json:"ntp,omitempty" yaml:"ntp,omitempty"`
	HostContainers map[Identifier]ContainerImage `json:"host-containers,omitempty" yaml:"host-containers,omitempty"`
	Kubernetes     *KubernetesSettings           `json:"kubernetes,omitempty" yaml:"kubernetes,omitempty"`
	_              struct{}
}

// UpdatesSettings locate update repositories
type UpdatesSettings struct {
	MetadataBaseURL *SingleLineString `json:"metadata-base-url,omitempty" yaml:"metadata-base-url,omitempty"`
	TargetBaseURL   *SingleLineString `json:"target-base-url,omitempty" yaml:"target-base-url,omitempty"`
	Seed            *uint32           `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// NTPSettings configure time synchronization
type NTPSettings struct {
	TimeServers []SingleLineString `json:"time-servers,omitempty" yaml:"time-servers,omitempty"`
}

// ContainerImage describes a host container
type ContainerImage struct {
	Source       *SingleLineString `json:"source,omitempty" yaml:"source,omitempty"`
	Enabled      *bool             `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Superpowered *bool             `json:"superpowered,omitempty" yaml:"superpowered,omitempty"`
}

// KubernetesSettings configure the kubelet
type KubernetesSettings struct {
	ClusterName        *Identifier                           `json:"cluster-name,omitempty" yaml:"cluster-name,omitempty"`
	ClusterCertificate *ValidBase64                          `json:"cluster-certificate,omitempty" yaml:"cluster-certificate,omitempty"`
	APIServer          *SingleLineString                     `json:"api-server,omitempty" yaml:"api-server,omitempty"`
	NodeLabels         map[SingleLineString]SingleLineString `json:"node-labels,omitempty" yaml:"node-labels,omitempty"`
	MaxPods            *uint32                               `json:"max-pods,omitempty" yaml:"max-pods,omitempty"`
}

// Validate cross-field constraints of the settings
func (s *Settings) Validate() error {
	for name := range s.HostContainers {
		if err := name.Validate(); err != nil {
			return ErrInvalidSettings.WithContext("host container").Wrap(err)
		}
	}
	return nil
}

// Validate the updates settings
func (u *UpdatesSettings) Validate() error {
	if u.Seed != nil && *u.Seed >= maxUpdatesSeed {
		return ErrInvalidSettings.WithContext("updates seed %d must be lower than %d", *u.Seed, maxUpdatesSeed)
	}
	return nil
}

// Validate the host container
func (c *ContainerImage) Validate() error {
	if c.Enabled != nil && *c.Enabled && c.Source == nil {
		return ErrInvalidSettings.WithContext("an enabled host container must have a source")
	}
	return nil
}
