package config

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	result.Defaults = mergeDefaults(base.Defaults, override.Defaults)
	result.Schema = mergeSchema(base.Schema, override.Schema)

	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(base.Extensions)+len(override.Extensions))
		for key, value := range base.Extensions {
			merged[key] = value
		}
		for key, value := range override.Extensions {
			// Sections present on both sides are merged one level deep
			if baseMap, ok := merged[key].(map[string]interface{}); ok {
				if overrideMap, ok := value.(map[string]interface{}); ok {
					mergedMap := make(map[string]interface{}, len(baseMap)+len(overrideMap))
					for k, v := range baseMap {
						mergedMap[k] = v
					}
					for k, v := range overrideMap {
						mergedMap[k] = v
					}
					merged[key] = mergedMap
					continue
				}
			}
			merged[key] = value
		}
		result.Extensions = merged
	}

	return &result
}

func mergeDefaults(base, override DefaultsConfig) DefaultsConfig {
	result := base

	if override.Model != "" {
		result.Model = override.Model
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Type != "" {
		result.Type = override.Type
	}

	return result
}

func mergeSchema(base, override SchemaConfig) SchemaConfig {
	result := base

	if override.ByAlias != nil {
		result.ByAlias = override.ByAlias
	}
	if override.AllowAdditionalProperties != nil {
		result.AllowAdditionalProperties = override.AllowAdditionalProperties
	}
	if override.RequiredFromJSONSchemaTags != nil {
		result.RequiredFromJSONSchemaTags = override.RequiredFromJSONSchemaTags
	}
	if override.DoNotReference != nil {
		result.DoNotReference = override.DoNotReference
	}

	return result
}
