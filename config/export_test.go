package config

var ApplyEnvOverrides = applyEnvOverrides
