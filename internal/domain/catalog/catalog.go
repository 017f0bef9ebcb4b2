// Package catalog declares the built-in models of the CMS.
package catalog

import (
	"fmt"

	"blocks-cms/internal/domain/registry"
	"blocks-cms/internal/domain/schema"
)

// Model names used across the engine.
const (
	Language            = "Language"
	Info                = "Info"
	SystemSettings      = "SystemSettings"
	LicenseKeys         = "LicenseKeys"
	Block               = "Block"
	Section             = "Section"
	Entry               = "Entry"
	Asset               = "Asset"
	Site                = "Site"
	User                = "User"
	UserGroup           = "UserGroup"
	UserGroupMember     = "UserGroupMember"
	UserGroupPermission = "UserGroupPermission"
	EntryDraft          = "EntryDraft"
	EntryVersion        = "EntryVersion"
)

// Deprecated names kept for old callers. Each maps to one canonical model.
var aliases = map[string]string{
	"Languages":       Language,
	"bLanguages":      Language,
	"Licensekeys":     LicenseKeys,
	"bLicenseKeys":    LicenseKeys,
	"bInfo":           Info,
	"bSystemSettings": SystemSettings,
	"bBlocks":         Block,
	"bSections":       Section,
	"bUserGroups":     UserGroup,
}

type attrs = map[string]*schema.AttributeDefinition
type rels = map[string]*registry.RelationDefinition

func models() []registry.ModelDescriptor {
	return []registry.ModelDescriptor{
		{
			Name:      Language,
			TableName: "languages",
			Attributes: attrs{
				"language_code": {Type: schema.TypeLanguage, Required: true, Unique: true, MaxLength: 12},
			},
		},
		{
			Name:      Info,
			TableName: "info",
			Attributes: attrs{
				"version":      {Type: schema.TypeVersion, Required: true, MaxLength: 15},
				"build":        {Type: schema.TypeBuild, Required: true, MaxLength: 15},
				"release_date": {Type: schema.TypeDate, Required: true},
				"on":           {Type: schema.TypeBoolean, Default: false},
			},
		},
		{
			Name:        SystemSettings,
			TableName:   "systemsettings",
			HasSettings: true,
			Attributes: attrs{
				"category": {Type: schema.TypeName, Required: true, Unique: true, MaxLength: 15},
				"settings": {Type: schema.TypeJSON},
			},
		},
		{
			Name:      LicenseKeys,
			TableName: "licensekeys",
			Attributes: attrs{
				"license_key": {Type: schema.TypeLicenseKey, Required: true, Unique: true, MaxLength: 36},
			},
		},
		{
			Name:        Block,
			TableName:   "blocks",
			HasSettings: true,
			Attributes: attrs{
				"name":         {Type: schema.TypeName, Required: true, MaxLength: 255},
				"handle":       {Type: schema.TypeName, Required: true, Unique: true, MaxLength: 64},
				"model":        {Type: schema.TypeString, Required: true, MaxLength: 150},
				"required":     {Type: schema.TypeBoolean, Default: false},
				"translatable": {Type: schema.TypeBoolean, Default: false},
				"title":        {Type: schema.TypeBoolean, Default: false},
				"instructions": {Type: schema.TypeText},
				"settings":     {Type: schema.TypeJSON},
			},
		},
		{
			Name:      Section,
			TableName: "sections",
			Attributes: attrs{
				"name":   {Type: schema.TypeName, Required: true, MaxLength: 100},
				"handle": {Type: schema.TypeName, Required: true, Unique: true, MaxLength: 45},
			},
			Relations: rels{
				"blocks":  {Kind: registry.PivotMany, Target: Block, PivotTable: "sectionblocks"},
				"entries": {Kind: registry.HasMany, Target: Entry, ForeignKey: "section_id"},
			},
		},
		{
			Name:         Entry,
			TableName:    "entries",
			HasContent:   true,
			ContentTable: "entrycontent",
			Attributes: attrs{
				"slug": {Type: schema.TypeString, MaxLength: 255},
			},
			Relations: rels{
				"section":  {Kind: registry.BelongsTo, Target: Section, ForeignKey: "section_id", Required: true},
				"drafts":   {Kind: registry.HasMany, Target: EntryDraft, ForeignKey: "owner_id"},
				"versions": {Kind: registry.HasMany, Target: EntryVersion, ForeignKey: "owner_id"},
			},
		},
		{
			Name:         Asset,
			TableName:    "assets",
			HasContent:   true,
			ContentTable: "assetcontent",
			Attributes: attrs{
				"filename": {Type: schema.TypeString, Required: true, MaxLength: 255},
			},
			Relations: rels{
				"blocks": {Kind: registry.PivotMany, Target: Block, PivotTable: "assetblocks"},
			},
		},
		{
			Name:         Site,
			TableName:    "sites",
			HasContent:   true,
			ContentTable: "sitecontent",
			Attributes: attrs{
				"name":     {Type: schema.TypeName, Required: true, MaxLength: 100},
				"url":      {Type: schema.TypeURL, Required: true, MaxLength: 255},
				"language": {Type: schema.TypeLanguage, Required: true},
			},
			Relations: rels{
				"blocks": {Kind: registry.PivotMany, Target: Block, PivotTable: "siteblocks"},
			},
		},
		{
			Name:         User,
			TableName:    "users",
			HasContent:   true,
			HasSettings:  true,
			ContentTable: "usercontent",
			Attributes: attrs{
				"username": {Type: schema.TypeName, Required: true, Unique: true, MaxLength: 100},
				"email":    {Type: schema.TypeString, Required: true, Unique: true, MaxLength: 255},
			},
			Relations: rels{
				"widgets":     {Kind: registry.PivotMany, Target: Block, PivotTable: "userwidgetsettings"},
				"memberships": {Kind: registry.HasMany, Target: UserGroupMember, ForeignKey: "user_id"},
			},
		},
		{
			Name:         UserGroup,
			TableName:    "usergroups",
			HasContent:   true,
			ContentTable: "usergroupcontent",
			Attributes: attrs{
				"name":   {Type: schema.TypeName, Required: true, MaxLength: 100},
				"handle": {Type: schema.TypeName, Required: true, Unique: true, MaxLength: 100},
			},
			Relations: rels{
				"blocks":      {Kind: registry.PivotMany, Target: Block, PivotTable: "usergroupblocks"},
				"members":     {Kind: registry.HasMany, Target: UserGroupMember, ForeignKey: "group_id"},
				"permissions": {Kind: registry.HasMany, Target: UserGroupPermission, ForeignKey: "group_id"},
			},
		},
		{
			Name:      UserGroupMember,
			TableName: "usergroupmembers",
			Relations: rels{
				"user":  {Kind: registry.BelongsTo, Target: User, ForeignKey: "user_id", Required: true},
				"group": {Kind: registry.BelongsTo, Target: UserGroup, ForeignKey: "group_id", Required: true},
			},
		},
		{
			Name:      UserGroupPermission,
			TableName: "usergrouppermissions",
			Attributes: attrs{
				"name":  {Type: schema.TypeString, Required: true, MaxLength: 255},
				"value": {Type: schema.TypeInteger, Required: true},
			},
			Relations: rels{
				"group": {Kind: registry.BelongsTo, Target: UserGroup, ForeignKey: "group_id", Required: true},
			},
		},
		{
			Name:      EntryDraft,
			TableName: "drafts",
			Attributes: attrs{
				"language_code": {Type: schema.TypeLanguage, Required: true},
			},
			Relations: rels{
				"owner":         {Kind: registry.BelongsTo, Target: Entry, ForeignKey: "owner_id", Required: true},
				"parentVersion": {Kind: registry.BelongsTo, Target: EntryVersion, ForeignKey: "parent_version_id"},
			},
		},
		{
			Name:      EntryVersion,
			TableName: "entryversions",
			Attributes: attrs{
				"num":           {Type: schema.TypeInteger, Required: true, Min: schema.Bound(1)},
				"language_code": {Type: schema.TypeLanguage, Required: true},
				"notes":         {Type: schema.TypeText},
			},
			Relations: rels{
				"owner":         {Kind: registry.BelongsTo, Target: Entry, ForeignKey: "owner_id", Required: true},
				"parentVersion": {Kind: registry.BelongsTo, Target: EntryVersion, ForeignKey: "parent_version_id"},
			},
		},

		blockType("PlainText", "plaintextblocks", schema.TypeText),
		blockType("Number", "numberblocks", schema.TypeInteger),
		blockType("Checkbox", "checkboxblocks", schema.TypeBoolean),
		blockType("Date", "dateblocks", schema.TypeDate),
		blockType("Url", "urlblocks", schema.TypeURL),
		blockType("Json", "jsonblocks", schema.TypeJSON),
	}
}

func blockType(name, table string, t schema.AttributeType) registry.ModelDescriptor {
	return registry.ModelDescriptor{
		Name:       name,
		TableName:  table,
		IsBlock:    true,
		Attributes: attrs{"value": {Type: t}},
	}
}

// Register adds the built-in models and aliases to r.
func Register(r *registry.Registry) error {
	for _, m := range models() {
		if _, err := r.Register(m); err != nil {
			return fmt.Errorf("register %s: %w", m.Name, err)
		}
	}
	for old, canonical := range aliases {
		if err := r.Alias(old, canonical); err != nil {
			return err
		}
	}
	return nil
}

// Load builds a registry from the built-in models plus an optional YAML
// catalog, then seals it.
func Load(catalogPath string) (*registry.Registry, error) {
	r := registry.New()
	if err := Register(r); err != nil {
		return nil, err
	}
	if catalogPath != "" {
		extra, err := registry.LoadCatalogFile(catalogPath)
		if err != nil {
			return nil, err
		}
		if err := extra.Apply(r); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", catalogPath, err)
		}
	}
	if err := r.Seal(); err != nil {
		return nil, err
	}
	return r, nil
}
