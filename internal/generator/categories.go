package generator

// CategorySeed is a category the seeder creates when missing.
type CategorySeed struct {
	Name        string
	Description string
}

var defaultCategories = []CategorySeed{
	{"Technology", "Tech reviews, tutorials, programming, and innovation"},
	{"Entertainment", "Movies, TV shows, celebrity news, and pop culture"},
	{"Education", "Learning content, tutorials, and educational videos"},
	{"Gaming", "Video game content, reviews, and gameplay"},
	{"Music", "Music videos, performances, and music-related content"},
	{"Sports", "Sports highlights, analysis, and athletic content"},
	{"News", "Current events, journalism, and news analysis"},
	{"Comedy", "Funny videos, sketches, and comedic content"},
	{"Science", "Scientific content, experiments, and discoveries"},
	{"Travel", "Travel vlogs, destination guides, and cultural exploration"},
	{"Cooking", "Recipes, cooking tutorials, and food content"},
	{"Fitness", "Workout videos, health tips, and wellness content"},
}

// DefaultCategories returns the seed category list.
func DefaultCategories() []CategorySeed {
	out := make([]CategorySeed, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}
