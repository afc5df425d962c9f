package conf

import (
	"time"

	"github.com/spf13/viper"
)

// SetDefaults registers the default configuration values with viper.
func SetDefaults() {
	viper.SetDefault("debug", false)

	viper.SetDefault("wfo.enabled", true)
	viper.SetDefault("wfo.baseurl", "https://list.worldfloraonline.org/matching_rest.php")
	viper.SetDefault("wfo.graphqlurl", "https://list.worldfloraonline.org/gql.php")
	viper.SetDefault("wfo.timeout", 30*time.Second)
	viper.SetDefault("wfo.cachettl", 24*time.Hour)
	viper.SetDefault("wfo.ratelimitms", 100)

	viper.SetDefault("inaturalist.enabled", true)
	viper.SetDefault("inaturalist.baseurl", "https://api.inaturalist.org/v1")
	viper.SetDefault("inaturalist.timeout", 30*time.Second)
	viper.SetDefault("inaturalist.cachettl", 24*time.Hour)
	viper.SetDefault("inaturalist.ratelimitms", 100)
	viper.SetDefault("inaturalist.taxonphotolimit", 10)
	viper.SetDefault("inaturalist.observationpagesize", 30)

	viper.SetDefault("pipeline.inputdir", "static")
	viper.SetDefault("pipeline.outputdir", "")
	viper.SetDefault("pipeline.filepattern", "plants*.json")
	viper.SetDefault("pipeline.calldelayms", 500)
	viper.SetDefault("pipeline.preferacceptedforsynonyms", true)
}
