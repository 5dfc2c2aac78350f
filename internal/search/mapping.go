package search

// DefaultIndexName is the index reviews are written to.
const DefaultIndexName = "reputation_reviews"

func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "analysis": {
      "analyzer": {
        "review_text": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "asciifolding", "english_stop", "english_stemmer"]
        }
      },
      "filter": {
        "english_stop":    { "type": "stop", "stopwords": "_english_" },
        "english_stemmer": { "type": "stemmer", "language": "english" }
      }
    }
  },
  "mappings": {
    "properties": {
      "id":              { "type": "keyword" },
      "source_id":       { "type": "keyword" },
      "author_name":     { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "title":           { "type": "text", "analyzer": "review_text" },
      "content":         { "type": "text", "analyzer": "review_text" },
      "rating":          { "type": "integer" },
      "status":          { "type": "keyword" },
      "sentiment":       { "type": "keyword" },
      "sentiment_score": { "type": "float" },
      "tags":            { "type": "keyword" },
      "keywords":        { "type": "keyword" },
      "published_at":    { "type": "date" }
    }
  }
}`
}
